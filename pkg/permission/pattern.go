package permission

import (
	"path"
	"strings"

	"claudeless/pkg/state"
)

type argKind int

const (
	argExact argKind = iota
	argPrefix
	argGlob
)

// ToolPattern is one compiled entry from permissions.allow or
// permissions.deny. The grammar matches real Claude settings:
//
//	"Read"            all Read calls
//	"Bash(npm test)"  exact command
//	"Bash(npm:*)"     commands with the prefix "npm"
//	"Write(*.md)"     glob over the argument
type ToolPattern struct {
	Tool   string
	hasArg bool
	kind   argKind
	arg    string
}

// ParseToolPattern parses a pattern string. Returns false for empty or
// unusable input.
func ParseToolPattern(s string) (ToolPattern, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ToolPattern{}, false
	}
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return ToolPattern{Tool: s}, true
	}

	p := ToolPattern{Tool: s[:open], hasArg: true}
	arg := s[open+1 : len(s)-1]
	switch {
	case strings.HasSuffix(arg, ":*"):
		p.kind = argPrefix
		p.arg = strings.TrimSuffix(arg, ":*")
	case strings.ContainsAny(arg, "*?["):
		if _, err := path.Match(arg, ""); err != nil {
			// Malformed glob degrades to a bare tool match.
			p.hasArg = false
			return p, true
		}
		p.kind = argGlob
		p.arg = arg
	default:
		p.kind = argExact
		p.arg = arg
	}
	return p, true
}

// Matches reports whether this pattern covers a tool call. The tool
// name comparison is case-insensitive; input is the call's argument
// rendering (command for Bash, file path for Write/Edit).
func (p ToolPattern) Matches(toolName, input string, hasInput bool) bool {
	if !strings.EqualFold(p.Tool, toolName) {
		return false
	}
	if !p.hasArg {
		return true
	}
	if !hasInput {
		return false
	}
	switch p.kind {
	case argExact:
		return input == p.arg
	case argPrefix:
		return strings.HasPrefix(input, p.arg)
	case argGlob:
		ok, err := path.Match(p.arg, input)
		return err == nil && ok
	}
	return false
}

// Patterns is the compiled allow/deny set from settings.
type Patterns struct {
	Allow []ToolPattern
	Deny  []ToolPattern
}

// PatternsFromSettings compiles the permission arrays of merged
// settings, skipping unparseable entries.
func PatternsFromSettings(s state.PermissionSettings) Patterns {
	return Patterns{
		Allow: compileAll(s.Allow),
		Deny:  compileAll(s.Deny),
	}
}

func compileAll(specs []string) []ToolPattern {
	var out []ToolPattern
	for _, spec := range specs {
		if p, ok := ParseToolPattern(spec); ok {
			out = append(out, p)
		}
	}
	return out
}

// Allowed reports whether the call matches an allow pattern.
func (ps Patterns) Allowed(tool, input string, hasInput bool) bool {
	return anyMatch(ps.Allow, tool, input, hasInput)
}

// Denied reports whether the call matches a deny pattern.
func (ps Patterns) Denied(tool, input string, hasInput bool) bool {
	return anyMatch(ps.Deny, tool, input, hasInput)
}

// Empty reports whether no patterns are configured.
func (ps Patterns) Empty() bool { return len(ps.Allow) == 0 && len(ps.Deny) == 0 }

func anyMatch(patterns []ToolPattern, tool, input string, hasInput bool) bool {
	for _, p := range patterns {
		if p.Matches(tool, input, hasInput) {
			return true
		}
	}
	return false
}
