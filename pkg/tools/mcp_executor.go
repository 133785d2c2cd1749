package tools

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"claudeless/pkg/mcp"
	"claudeless/pkg/scenario"
)

// MCPExecutor routes tool calls to connected MCP servers.
type MCPExecutor struct {
	manager *mcp.Manager
}

// NewMCPExecutor creates an executor over the given server manager.
func NewMCPExecutor(manager *mcp.Manager) *MCPExecutor {
	return &MCPExecutor{manager: manager}
}

// HasTool reports whether a tool is served by MCP. Accepts both raw
// names (read_file) and qualified names (mcp__filesystem__read_file).
func (e *MCPExecutor) HasTool(name string) bool {
	return e.manager.HasTool(rawToolName(name))
}

// rawToolName strips the mcp__<server>__ prefix when present.
func rawToolName(name string) string {
	if _, tool, ok := mcp.ParseQualifiedName(name); ok {
		return tool
	}
	return name
}

func (e *MCPExecutor) Execute(call *scenario.ToolCallSpec, toolUseID string, _ *ExecutionContext) Result {
	raw := rawToolName(call.Tool)
	if !e.manager.HasTool(raw) {
		return Error(toolUseID, "MCP tool not found: "+call.Tool)
	}

	input := canonicalizePathArguments(call.InputMap())
	args, err := json.Marshal(input)
	if err != nil {
		return Error(toolUseID, err.Error())
	}

	result, err := e.manager.CallTool(raw, args)
	if err != nil {
		return Error(toolUseID, err.Error())
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "MCP tool execution failed"
		}
		return Error(toolUseID, msg)
	}
	return Success(toolUseID, formatMCPContent(result.Content))
}

func (*MCPExecutor) Name() string { return "mcp" }

// formatMCPContent renders a result payload as text: bare strings pass
// through, null becomes empty, everything else pretty-prints as JSON.
func formatMCPContent(content json.RawMessage) string {
	if len(content) == 0 || string(content) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return string(content)
	}
	return buf.String()
}

// pathArgumentNames are the input fields filesystem tools use for paths.
var pathArgumentNames = []string{
	"path", "file_path", "directory", "source", "destination", "old_path", "new_path",
}

// canonicalizePathArguments resolves symlinks in path arguments so they
// match what servers see after resolving their allowed directories,
// such as /tmp vs /private/tmp on macOS. Nonexistent targets get their
// parent resolved with the file name reattached.
func canonicalizePathArguments(input map[string]any) map[string]any {
	for _, key := range pathArgumentNames {
		p, ok := input[key].(string)
		if !ok {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			input[key] = resolved
		} else if parent := filepath.Dir(p); parent != p {
			if resolvedParent, err := filepath.EvalSymlinks(parent); err == nil {
				input[key] = filepath.Join(resolvedParent, filepath.Base(p))
			}
		}
	}
	return input
}

// CompositeExecutor tries MCP first and falls back to the built-ins.
type CompositeExecutor struct {
	mcp     *MCPExecutor
	builtin *BuiltinExecutor
}

// NewCompositeExecutor layers MCP routing over the builtin executor.
// A nil mcp executor routes everything to the built-ins.
func NewCompositeExecutor(mcpExec *MCPExecutor, builtin *BuiltinExecutor) *CompositeExecutor {
	return &CompositeExecutor{mcp: mcpExec, builtin: builtin}
}

func (e *CompositeExecutor) Execute(call *scenario.ToolCallSpec, toolUseID string, ctx *ExecutionContext) Result {
	if e.mcp != nil {
		if strings.HasPrefix(call.Tool, mcp.QualifiedPrefix) || e.mcp.HasTool(call.Tool) {
			return e.mcp.Execute(call, toolUseID, ctx)
		}
	}
	return e.builtin.Execute(call, toolUseID, ctx)
}

func (*CompositeExecutor) Name() string { return "composite" }
