package tui

import (
	"fmt"
	"strings"
)

// memorySource identifies where a CLAUDE.md instruction file comes from.
type memorySource int

const (
	memoryProject memorySource = iota
	memoryUser
	memoryEnterprise
)

func (s memorySource) name() string {
	switch s {
	case memoryProject:
		return "Project"
	case memoryUser:
		return "User"
	case memoryEnterprise:
		return "Enterprise"
	}
	return ""
}

func (s memorySource) description() string {
	switch s {
	case memoryProject:
		return "Project-specific instructions (.claude/CLAUDE.md)"
	case memoryUser:
		return "User-level instructions (~/.claude/CLAUDE.md)"
	case memoryEnterprise:
		return "Organization-level instructions"
	}
	return ""
}

type memoryEntry struct {
	source   memorySource
	path     string
	isActive bool
}

// memoryDialog backs the /memory view of instruction files.
type memoryDialog struct {
	entries []memoryEntry
	scroll  scrollState
}

func newMemoryDialog() *memoryDialog {
	entries := []memoryEntry{
		{source: memoryProject, path: ".claude/CLAUDE.md", isActive: true},
		{source: memoryUser, path: "~/.claude/CLAUDE.md", isActive: false},
		{source: memoryEnterprise, path: "", isActive: false},
	}
	d := &memoryDialog{
		entries: entries,
		scroll:  newScrollState(5),
	}
	d.scroll.SetTotal(len(entries))
	return d
}

func (d *memoryDialog) SelectPrev() { d.scroll.SelectPrev() }
func (d *memoryDialog) SelectNext() { d.scroll.SelectNext() }

func (d *memoryDialog) SelectedEntry() *memoryEntry {
	if d.scroll.selectedIndex < 0 || d.scroll.selectedIndex >= len(d.entries) {
		return nil
	}
	return &d.entries[d.scroll.selectedIndex]
}

func entryPath(e memoryEntry) string {
	if e.path == "" {
		return "(not configured)"
	}
	return e.path
}

func renderMemoryDialog(d *memoryDialog, _ int) string {
	var b strings.Builder

	activeCount := 0
	for _, e := range d.entries {
		if e.isActive {
			activeCount++
		}
	}
	if activeCount == 1 {
		b.WriteString(" Memory · 1 file\n")
	} else {
		fmt.Fprintf(&b, " Memory · %d files\n", activeCount)
	}
	b.WriteString("\n")

	for i, e := range d.entries {
		prefix := " "
		if i == d.scroll.selectedIndex {
			prefix = "❯"
		}
		status := " "
		if e.isActive {
			status = "✓"
		}
		fmt.Fprintf(&b, " %s %s %d. %s - %s\n", prefix, status, i+1, e.source.name(), entryPath(e))
	}

	b.WriteString("\n")
	b.WriteString(" Enter to view · Esc to cancel")
	return b.String()
}
