package tools

import (
	"fmt"
	"path/filepath"

	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

// builtinContext is the trimmed environment passed to individual
// built-in tool executors.
type builtinContext struct {
	cwd string
}

// resolvePath makes p absolute relative to the working directory.
func (c *builtinContext) resolvePath(p string) string {
	if filepath.IsAbs(p) || c.cwd == "" {
		return p
	}
	return filepath.Join(c.cwd, p)
}

// builtinTool is one live tool implementation.
type builtinTool interface {
	execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result
	toolName() string
}

// BuiltinExecutor dispatches to live implementations of the built-in
// tools, with stateful tools routed to a session state writer.
type BuiltinExecutor struct {
	executors map[string]builtinTool
	writer    *state.Writer
}

// NewBuiltinExecutor creates an executor with all live tools registered.
func NewBuiltinExecutor() *BuiltinExecutor {
	all := []builtinTool{
		bashTool{},
		readTool{},
		writeTool{},
		editTool{},
		globTool{},
		grepTool{},
	}
	m := make(map[string]builtinTool, len(all))
	for _, e := range all {
		m[e.toolName()] = e
	}
	return &BuiltinExecutor{executors: m}
}

// WithStateWriter routes TodoWrite and ExitPlanMode to the given writer.
func (e *BuiltinExecutor) WithStateWriter(w *state.Writer) *BuiltinExecutor {
	e.writer = w
	return e
}

// Execute runs a tool call. Stateful tools go to the state writer
// before any mock fallback, since they always touch the state dir.
func (e *BuiltinExecutor) Execute(call *scenario.ToolCallSpec, toolUseID string, ctx *ExecutionContext) Result {
	if e.writer != nil {
		switch call.Tool {
		case NameTodoWrite:
			r := executeTodoWrite(call, e.writer)
			r.ToolUseID = toolUseID
			return r
		case NameExitPlanMode:
			r := executeExitPlanMode(call, e.writer)
			r.ToolUseID = toolUseID
			return r
		}
	}

	if call.Result != nil {
		return Success(toolUseID, *call.Result)
	}

	if tool, ok := e.executors[call.Tool]; ok {
		bc := builtinContext{}
		if ctx != nil {
			bc.cwd = ctx.Cwd
		}
		return tool.execute(call, toolUseID, &bc)
	}

	if IsStateful(call.Tool) {
		return Success(toolUseID, fmt.Sprintf("%s executed (no state writer configured)", call.Tool))
	}
	return Error(toolUseID, fmt.Sprintf("Unknown built-in tool: %s", call.Tool))
}

// Name identifies this executor.
func (*BuiltinExecutor) Name() string { return "builtin" }
