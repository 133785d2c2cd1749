package tui

import (
	"fmt"
	"strings"
)

// helpTab is one of the /help dialog tabs.
type helpTab int

const (
	tabGeneral helpTab = iota
	tabCommands
	tabCustomCommands
)

func (t helpTab) Name() string {
	switch t {
	case tabCommands:
		return "commands"
	case tabCustomCommands:
		return "custom-commands"
	default:
		return "general"
	}
}

// helpDialog is the tabbed /help overlay.
type helpDialog struct {
	activeTab        helpTab
	commandsSelected int
	customSelected   int
	version          string
}

func newHelpDialog(version string) *helpDialog {
	return &helpDialog{version: version}
}

func (d *helpDialog) NextTab() { d.activeTab = (d.activeTab + 1) % 3 }
func (d *helpDialog) PrevTab() { d.activeTab = (d.activeTab + 2) % 3 }

func (d *helpDialog) SelectPrev(total int) {
	if d.activeTab == tabCommands && d.commandsSelected > 0 {
		d.commandsSelected--
	}
}

func (d *helpDialog) SelectNext(total int) {
	if d.activeTab == tabCommands && d.commandsSelected+1 < total {
		d.commandsSelected++
	}
}

// helpTabHeader builds the ──Claude Code v{ver}  tab  tab ─ tab (hint)──
// top rule. The active tab is set off by double spaces; inactive tabs
// are separated by a dash.
func (d *helpDialog) tabHeader(width int) string {
	innerWidth := width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	var tabs strings.Builder
	prevActive := false
	for i, tab := range []helpTab{tabGeneral, tabCommands, tabCustomCommands} {
		if tab == d.activeTab {
			tabs.WriteString(fmt.Sprintf("  %s  ", tab.Name()))
			prevActive = true
			continue
		}
		if i > 0 && !prevActive {
			tabs.WriteString(" ─")
		}
		tabs.WriteString(" " + tab.Name())
		prevActive = false
	}

	prefix := fmt.Sprintf("──Claude Code v%s%s (←/→ or tab to cycle)", d.version, tabs.String())
	remaining := innerWidth - len([]rune(prefix))
	if remaining < 0 {
		remaining = 0
	}
	return prefix + strings.Repeat("─", remaining)
}

const helpFooter = " For more help: https://code.claude.com/docs/en/overview"

func renderHelpDialog(d *helpDialog, width int) string {
	var b strings.Builder
	b.WriteString(d.tabHeader(width))
	b.WriteString("\n\n\n")

	switch d.activeTab {
	case tabGeneral:
		description := "  Claude understands your codebase, makes edits with your permission, and executes commands — right from your terminal."
		shortcuts := [][3]string{
			{"! for bash mode", "double tap esc to clear input", "ctrl + z to suspend"},
			{"/ for commands", "shift + tab to auto-accept", "meta + p to switch models"},
			{"& for background", "ctrl + t to show todos", "ctrl + g to edit in $EDITOR"},
			{"", "shift + ⏎ for newline", "/keybindings to customize"},
		}
		for _, line := range wrapLine(description, width) {
			b.WriteString(line + "\n")
		}
		for _, row := range shortcuts {
			b.WriteString(fmt.Sprintf("  %-20s  %-30s  %s\n", row[0], row[1], row[2]))
		}
		b.WriteString("\n")
		b.WriteString(helpFooter + "\n")
		b.WriteString(" Esc to cancel")

	case tabCommands:
		b.WriteString("  Browse default commands:\n")
		if d.commandsSelected < len(slashCommands) {
			cmd := slashCommands[d.commandsSelected]
			b.WriteString(fmt.Sprintf("  ❯ /%s\n", cmd.Name))
			b.WriteString(fmt.Sprintf("    %s\n", cmd.Description))
		}
		if d.commandsSelected+1 < len(slashCommands) {
			next := slashCommands[d.commandsSelected+1]
			b.WriteString(fmt.Sprintf("    /%s\n", next.Name))
			b.WriteString(fmt.Sprintf("    %s\n", next.Description))
		}
		b.WriteString(helpFooter)

	case tabCustomCommands:
		b.WriteString("  Browse custom commands:\n")
		b.WriteString("  (no custom commands configured)\n\n")
		b.WriteString(helpFooter)
	}
	return b.String()
}

// wrapLine word-wraps a line at the given width, preserving the
// leading indent on continuation lines.
func wrapLine(text string, width int) []string {
	if len([]rune(text)) <= width || width <= 0 {
		return []string{text}
	}
	indent := len(text) - len(strings.TrimLeft(text, " "))
	prefix := strings.Repeat(" ", indent)

	var lines []string
	current := prefix
	for _, word := range strings.Fields(text) {
		trial := current
		if strings.TrimSpace(current) != "" {
			trial += " "
		}
		trial += word
		if len([]rune(trial)) > width && strings.TrimSpace(current) != "" {
			lines = append(lines, current)
			current = prefix + word
			continue
		}
		current = trial
	}
	if strings.TrimSpace(current) != "" {
		lines = append(lines, current)
	}
	return lines
}
