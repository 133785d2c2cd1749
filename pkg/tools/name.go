package tools

// Known built-in tool names.
const (
	NameBash         = "Bash"
	NameRead         = "Read"
	NameWrite        = "Write"
	NameEdit         = "Edit"
	NameGlob         = "Glob"
	NameGrep         = "Grep"
	NameTodoWrite    = "TodoWrite"
	NameExitPlanMode = "ExitPlanMode"
	NameWebFetch     = "WebFetch"
	NameWebSearch    = "WebSearch"
	NameNotebookEdit = "NotebookEdit"
	NameTask         = "Task"
)

var knownTools = map[string]bool{
	NameBash:         true,
	NameRead:         true,
	NameWrite:        true,
	NameEdit:         true,
	NameGlob:         true,
	NameGrep:         true,
	NameTodoWrite:    true,
	NameExitPlanMode: true,
	NameWebFetch:     true,
	NameWebSearch:    true,
	NameNotebookEdit: true,
	NameTask:         true,
}

// IsKnownTool reports whether name is a built-in tool.
func IsKnownTool(name string) bool { return knownTools[name] }

// IsStateful reports whether a tool writes to the session state
// directory instead of touching the filesystem directly.
func IsStateful(name string) bool {
	return name == NameTodoWrite || name == NameExitPlanMode
}

// Action maps a tool name to its permission action category. Unknown
// names, MCP tools included, default to execute.
func Action(name string) string {
	switch name {
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
	case NameTodoWrite, NameExitPlanMode:
		return "state"
	default:
		return "execute"
	}
}
