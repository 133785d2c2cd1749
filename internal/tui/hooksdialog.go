package tui

import (
	"fmt"
	"strings"
)

// hookKind is one configurable hook event row in the /hooks dialog.
type hookKind struct {
	name        string
	description string
	hasMatchers bool
}

// hookKinds lists every hook event the dialog offers, in menu order.
var hookKinds = []hookKind{
	{"PreToolUse", "Before tool execution", true},
	{"PostToolUse", "After tool execution", true},
	{"PostToolUseFailure", "After tool execution fails", true},
	{"Notification", "When notifications are sent", false},
	{"UserPromptSubmit", "When the user submits a prompt", false},
	{"SessionStart", "When a new session is started", false},
	{"Stop", "Right before Claude concludes its response", false},
	{"SubagentStart", "When a subagent (Task tool call) is started", false},
	{"SubagentStop", "Right before a subagent (Task tool call) concludes its response", false},
	{"PreCompact", "Before conversation compaction", false},
	{"SessionEnd", "When a session is ending", false},
	{"PermissionRequest", "When a permission dialog is displayed", false},
	{"Setup", "Repo setup hooks for init and maintenance", false},
	{"Disable all hooks", "Temporarily disable all hooks", false},
}

// hooksView is the active pane of the dialog.
type hooksView int

const (
	viewHookList hooksView = iota
	viewMatchers
)

// hooksDialog is the /hooks configuration overlay.
type hooksDialog struct {
	view            hooksView
	scroll          scrollState
	selectedHook    int
	activeHookCount int
}

func newHooksDialog(activeHookCount int) *hooksDialog {
	d := &hooksDialog{
		scroll:          newScrollState(len(hookKinds)),
		activeHookCount: activeHookCount,
	}
	d.scroll.SetTotal(len(hookKinds))
	return d
}

func (d *hooksDialog) SelectPrev() { d.scroll.SelectPrev() }
func (d *hooksDialog) SelectNext() { d.scroll.SelectNext() }

func (d *hooksDialog) OpenMatchers() {
	d.selectedHook = d.scroll.selectedIndex
	d.view = viewMatchers
}

func (d *hooksDialog) CloseMatchers() { d.view = viewHookList }

func renderHooksDialog(d *hooksDialog, _ int) string {
	if d.view == viewMatchers {
		return renderHookMatchers(d)
	}
	return renderHookList(d)
}

func renderHookList(d *hooksDialog) string {
	var b strings.Builder
	b.WriteString(" Hooks\n")
	b.WriteString(fmt.Sprintf(" %d hooks\n\n", d.activeHookCount))

	start := d.scroll.scrollOffset
	end := start + d.scroll.visibleCount
	if end > len(hookKinds) {
		end = len(hookKinds)
	}
	for i := start; i < end; i++ {
		prefix := " "
		switch {
		case i == d.scroll.selectedIndex:
			prefix = "❯"
		case i == end-1 && d.scroll.HasMoreBelow():
			prefix = "↓"
		}
		b.WriteString(fmt.Sprintf(" %s %d.  %s - %s\n", prefix, i+1, hookKinds[i].name, hookKinds[i].description))
	}

	b.WriteString("\n Enter to confirm · Esc to cancel")
	return b.String()
}

func renderHookMatchers(d *hooksDialog) string {
	hook := hookKinds[d.selectedHook]
	var b strings.Builder
	b.WriteString(fmt.Sprintf(" %s - Tool Matchers\n", hook.name))
	b.WriteString(" Input to command is JSON of tool call arguments.\n")
	b.WriteString(" Exit code 0 - stdout/stderr not shown\n")
	b.WriteString(" Exit code 2 - show stderr to model and block tool call\n")
	b.WriteString(" Other exit codes - show stderr to user only but continue with tool call\n\n")
	b.WriteString(" ❯ 1. + Add new matcher…\n")
	b.WriteString("   2. + Match all (no filter)\n")
	b.WriteString("   No matchers configured yet\n\n")
	b.WriteString(" Enter to confirm · Esc to cancel")
	return b.String()
}
