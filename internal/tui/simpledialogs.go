package tui

import (
	"fmt"
	"strings"
)

// selectionList formats numbered option rows with a cursor and an
// optional check mark on the current value.
type selectionList struct {
	labels       []string
	descriptions []string
	selected     int
	current      int
	hasCurrent   bool
}

func (l selectionList) lines() []string {
	out := make([]string, 0, len(l.labels))
	for i, label := range l.labels {
		cursor := "   "
		if i == l.selected {
			cursor = " ❯ "
		}
		desc := ""
		if i < len(l.descriptions) {
			desc = l.descriptions[i]
		}
		isCurrent := l.hasCurrent && i == l.current

		suffix := ""
		switch {
		case desc == "" && isCurrent:
			suffix = " ✔"
		case desc != "" && isCurrent:
			suffix = " ✔  " + desc
		case desc != "":
			suffix = "   " + desc
		}
		out = append(out, fmt.Sprintf("%s%d. %s%s", cursor, i+1, label, suffix))
	}
	return out
}

// thinkingDialog is the meta+t thinking toggle.
type thinkingDialog struct {
	// selectedEnabled is the highlighted row; currentEnabled is the
	// session's active value.
	selectedEnabled bool
	currentEnabled  bool
}

func renderThinkingDialog(d *thinkingDialog, width int) string {
	selected := 1
	if d.selectedEnabled {
		selected = 0
	}
	current := 1
	if d.currentEnabled {
		current = 0
	}
	opts := selectionList{
		labels: []string{"Enabled", "Disabled"},
		descriptions: []string{
			"Claude will think before responding",
			"Claude will respond without extended thinking",
		},
		selected:   selected,
		current:    current,
		hasCurrent: true,
	}

	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n Toggle thinking mode\n")
	b.WriteString(" Enable or disable thinking for this session.\n\n")
	for _, line := range opts.lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n Enter to confirm · Esc to exit")
	return b.String()
}

func renderTrustPrompt(p *trustPromptState, width int) string {
	selected := 1
	if p.selectedYes {
		selected = 0
	}
	opts := selectionList{
		labels:   []string{"Yes, proceed", "No, exit"},
		selected: selected,
	}

	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n Do you trust the files in this folder?\n\n")
	b.WriteString(fmt.Sprintf(" %s\n\n", p.workingDirectory))
	b.WriteString(" Claude Code may read, write, or execute files contained in this directory. This can pose security risks, so only use\n")
	b.WriteString(" files from trusted sources.\n\n")
	b.WriteString(" Learn more\n\n")
	for _, line := range opts.lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n Enter to confirm · Esc to cancel")
	return b.String()
}

func renderBypassConfirmDialog(s *bypassConfirmState, width int) string {
	selected := 0
	if s.selectedYes {
		selected = 1
	}
	opts := selectionList{
		labels:   []string{"No, exit", "Yes, I accept"},
		selected: selected,
	}

	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n WARNING: Claude Code running in Bypass Permissions mode\n\n")
	b.WriteString(" In Bypass Permissions mode, Claude Code will not ask for your approval before\n")
	b.WriteString(" running potentially dangerous commands.\n")
	b.WriteString(" This mode should only be used in a sandboxed container/VM that has restricted\n")
	b.WriteString(" internet access and can easily be restored if damaged.\n\n")
	b.WriteString(" By proceeding, you accept all responsibility for actions taken while running\n")
	b.WriteString(" in Bypass Permissions mode.\n\n")
	b.WriteString(" https://code.claude.com/docs/en/security\n\n")
	for _, line := range opts.lines() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n Enter to confirm · Esc to cancel")
	return b.String()
}
