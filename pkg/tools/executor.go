package tools

import (
	"fmt"

	"claudeless/pkg/mcp"
	"claudeless/pkg/permission"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

// ExecutionContext carries the environment a tool call runs in.
type ExecutionContext struct {
	// Cwd is the working directory for tool execution.
	Cwd string

	// SandboxRoot confines simulated file operations when set.
	SandboxRoot string

	// AllowRealBash permits spawning real shell commands.
	AllowRealBash bool

	// SessionID tags results for tracking.
	SessionID string
}

// ContextFromConfig builds an execution context from scenario tool config.
func ContextFromConfig(cfg *scenario.ToolExecutionConfig) ExecutionContext {
	if cfg == nil {
		return ExecutionContext{}
	}
	return ExecutionContext{
		SandboxRoot:   cfg.SandboxRoot,
		AllowRealBash: cfg.AllowRealBash,
	}
}

// WithCwd returns a copy with the working directory set.
func (c ExecutionContext) WithCwd(cwd string) ExecutionContext {
	c.Cwd = cwd
	return c
}

// WithSessionID returns a copy with the session ID set.
func (c ExecutionContext) WithSessionID(id string) ExecutionContext {
	c.SessionID = id
	return c
}

// Executor runs planned tool calls.
type Executor interface {
	// Execute runs one tool call and returns its result.
	Execute(call *scenario.ToolCallSpec, toolUseID string, ctx *ExecutionContext) Result

	// Name identifies this executor for debugging.
	Name() string
}

// MockExecutor returns the pre-configured result from the tool call spec.
type MockExecutor struct{}

// NewMockExecutor creates a mock executor.
func NewMockExecutor() *MockExecutor { return &MockExecutor{} }

func (*MockExecutor) Execute(call *scenario.ToolCallSpec, toolUseID string, _ *ExecutionContext) Result {
	if call.Result != nil {
		return Success(toolUseID, *call.Result)
	}
	return NoMockResult(toolUseID, call.Tool)
}

func (*MockExecutor) Name() string { return "mock" }

// DisabledExecutor rejects every tool call.
type DisabledExecutor struct{}

// NewDisabledExecutor creates a disabled executor.
func NewDisabledExecutor() *DisabledExecutor { return &DisabledExecutor{} }

func (*DisabledExecutor) Execute(_ *scenario.ToolCallSpec, toolUseID string, _ *ExecutionContext) Result {
	return Disabled(toolUseID)
}

func (*DisabledExecutor) Name() string { return "disabled" }

// PermissionCheckingExecutor gates an inner executor behind permission checks.
type PermissionCheckingExecutor struct {
	inner   Executor
	checker *permission.Checker
}

// NewPermissionCheckingExecutor wraps inner with permission checks.
func NewPermissionCheckingExecutor(inner Executor, checker *permission.Checker) *PermissionCheckingExecutor {
	return &PermissionCheckingExecutor{inner: inner, checker: checker}
}

// permissionAction maps a tool to the action its permission check uses.
// Stateful and MCP tools fall through to execute.
func permissionAction(toolName string) string {
	switch toolName {
	case NameBash:
		return "execute"
	case NameRead, NameGlob, NameGrep:
		return "read"
	case NameWrite, NameEdit, NameNotebookEdit:
		return "write"
	case NameWebFetch, NameWebSearch:
		return "network"
	case NameTask:
		return "delegate"
	default:
		return "execute"
	}
}

// PermissionAction exposes the tool-to-action mapping for callers that
// run their own permission checks before dispatching, like the
// interactive turn loop.
func PermissionAction(toolName string) string { return permissionAction(toolName) }

func (e *PermissionCheckingExecutor) Execute(call *scenario.ToolCallSpec, toolUseID string, ctx *ExecutionContext) Result {
	action := permissionAction(call.Tool)
	res := e.checker.Check(call.Tool, action)
	switch res.Decision {
	case permission.Allowed:
		return e.inner.Execute(call, toolUseID, ctx)
	case permission.Denied:
		return PermissionDenied(toolUseID, res.Reason)
	default:
		// No interactive prompting here, so a prompt request is a denial.
		return PermissionDenied(toolUseID, fmt.Sprintf(
			"Tool '%s' requires permission for '%s' action", res.Tool, res.Action))
	}
}

func (*PermissionCheckingExecutor) Name() string { return "permission_checking" }

// NewExecutor selects a backend for the given execution mode.
func NewExecutor(mode string) Executor {
	switch mode {
	case scenario.ToolModeDisabled:
		return NewDisabledExecutor()
	case scenario.ToolModeMock:
		return NewMockExecutor()
	default:
		return NewBuiltinExecutor()
	}
}

// NewExecutorWithPermissions selects a backend and wraps it with
// permission checking.
func NewExecutorWithPermissions(mode string, checker *permission.Checker) Executor {
	return NewPermissionCheckingExecutor(NewExecutor(mode), checker)
}

// NewExecutorWithMCP selects a backend and routes qualified tool names
// to the MCP manager. Disabled and mock modes ignore both the manager
// and the state writer.
func NewExecutorWithMCP(mode string, manager *mcp.Manager, writer *state.Writer) Executor {
	switch mode {
	case scenario.ToolModeDisabled:
		return NewDisabledExecutor()
	case scenario.ToolModeMock:
		return NewMockExecutor()
	}
	builtin := NewBuiltinExecutor()
	if writer != nil {
		builtin = builtin.WithStateWriter(writer)
	}
	if manager == nil {
		return builtin
	}
	return NewCompositeExecutor(NewMCPExecutor(manager), builtin)
}
