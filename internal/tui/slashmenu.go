package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// slashCommand is one entry in the "/" autocomplete menu.
type slashCommand struct {
	Name         string
	Description  string
	ArgumentHint string
}

// menuVisibleCount caps how many commands the menu shows at once.
const menuVisibleCount = 10

// slashCommands is the full menu, alphabetical.
var slashCommands = []slashCommand{
	{Name: "add-dir", Description: "Add a new working directory", ArgumentHint: "<path>"},
	{Name: "agents", Description: "Manage agent configurations"},
	{Name: "bug", Description: "Report a bug or issue"},
	{Name: "clear", Description: "Clear conversation history"},
	{Name: "compact", Description: "Compact conversation (keep a summary in context)"},
	{Name: "config", Description: "Open configuration settings"},
	{Name: "context", Description: "View current context usage"},
	{Name: "cost", Description: "Show session cost summary"},
	{Name: "doctor", Description: "Run diagnostics and check system health"},
	{Name: "fork", Description: "Create a fork of the current conversation at this point"},
	{Name: "help", Description: "Show help and available commands"},
	{Name: "hooks", Description: "Manage hook configurations for tool events"},
	{Name: "init", Description: "Initialize a new project or configuration"},
	{Name: "login", Description: "Log in to your account"},
	{Name: "logout", Description: "Log out of your account"},
	{Name: "mcp", Description: "Manage MCP server connections"},
	{Name: "memory", Description: "View or manage conversation memory"},
	{Name: "model", Description: "Switch the active model", ArgumentHint: "<model>"},
	{Name: "permissions", Description: "View or manage permissions"},
	{Name: "pr-comments", Description: "View pull request comments"},
	{Name: "review", Description: "Review code changes"},
	{Name: "status", Description: "Show current session status"},
	{Name: "tasks", Description: "List and manage background tasks"},
	{Name: "terminal-setup", Description: "Configure terminal settings"},
	{Name: "todos", Description: "Show the current todo list"},
	{Name: "vim", Description: "Toggle vim keybindings mode"},
}

// fuzzyMatches reports whether every rune of filter appears in name in
// order, case-insensitively.
func fuzzyMatches(name, filter string) bool {
	name = strings.ToLower(name)
	filter = strings.ToLower(filter)
	i := 0
	for _, r := range name {
		if i >= len(filter) {
			return true
		}
		if byte(r) == filter[i] {
			i++
		}
	}
	return i >= len(filter)
}

// slashMenuState tracks the open autocomplete menu.
type slashMenuState struct {
	filter        string
	selectedIndex int
	filtered      []slashCommand

	// highlights maps filtered index to matched rune positions in the
	// command name, for emphasis when rendering.
	highlights map[int][]int
}

// newSlashMenuState opens the menu with an initial filter.
func newSlashMenuState(filter string) *slashMenuState {
	m := &slashMenuState{}
	m.SetFilter(filter)
	return m
}

// SetFilter refilters the menu, preserving the declared command order.
// Selection resets to the top when it falls off the filtered list.
func (m *slashMenuState) SetFilter(filter string) {
	m.filter = filter
	m.filtered = m.filtered[:0]
	for _, cmd := range slashCommands {
		if fuzzyMatches(cmd.Name, filter) {
			m.filtered = append(m.filtered, cmd)
		}
	}
	m.highlights = matchHighlights(m.filtered, filter)
	if m.selectedIndex >= len(m.filtered) {
		m.selectedIndex = 0
	}
}

// matchHighlights scores the filtered names so the matched runes can
// be emphasized. Ranking stays declaration-ordered; only the matched
// index data is used.
func matchHighlights(cmds []slashCommand, filter string) map[int][]int {
	if filter == "" {
		return nil
	}
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	out := make(map[int][]int, len(cmds))
	for _, match := range fuzzy.Find(strings.ToLower(filter), names) {
		out[match.Index] = match.MatchedIndexes
	}
	return out
}

// SelectNext moves the selection down, wrapping.
func (m *slashMenuState) SelectNext() {
	if len(m.filtered) == 0 {
		return
	}
	m.selectedIndex = (m.selectedIndex + 1) % len(m.filtered)
}

// SelectPrev moves the selection up, wrapping.
func (m *slashMenuState) SelectPrev() {
	if len(m.filtered) == 0 {
		return
	}
	if m.selectedIndex == 0 {
		m.selectedIndex = len(m.filtered) - 1
	} else {
		m.selectedIndex--
	}
}

// Selected returns the highlighted command, if any.
func (m *slashMenuState) Selected() (slashCommand, bool) {
	if m.selectedIndex < len(m.filtered) {
		return m.filtered[m.selectedIndex], true
	}
	return slashCommand{}, false
}

// findSlashCommand looks up an exact command by name.
func findSlashCommand(name string) (slashCommand, bool) {
	for _, cmd := range slashCommands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return slashCommand{}, false
}
