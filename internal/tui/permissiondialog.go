package tui

import (
	"fmt"
	"path/filepath"
	"strings"
)

// permissionSelection is the highlighted option in a permission dialog.
type permissionSelection int

const (
	selectYes permissionSelection = iota
	selectYesSession
	selectNo
)

func (s permissionSelection) Next() permissionSelection {
	return (s + 1) % 3
}

func (s permissionSelection) Prev() permissionSelection {
	return (s + 2) % 3
}

// diffLine is one row of an edit preview.
type diffLine struct {
	// number is 0 for unnumbered context rows.
	number  int
	prefix  string // "-", "+", or " "
	content string
}

// permissionDialog describes a pending tool call awaiting approval.
// Exactly one of the bash/edit/write shapes is populated.
type permissionDialog struct {
	selected permissionSelection

	// Bash
	isBash      bool
	command     string
	description string

	// Edit
	isEdit   bool
	editPath string
	diff     []diffLine

	// Write
	isWrite      bool
	writePath    string
	contentLines []string
}

// Render draws the full dialog at the given width.
func (d *permissionDialog) Render(width int) string {
	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n")

	switch {
	case d.isBash:
		b.WriteString(" Bash command\n\n")
		b.WriteString(fmt.Sprintf("   %s\n", d.command))
		if d.description != "" {
			b.WriteString(fmt.Sprintf("   %s\n", d.description))
		}
		b.WriteString("\n")
	case d.isEdit:
		b.WriteString(fmt.Sprintf(" Edit file %s\n\n", d.editPath))
		b.WriteString(makeSectionDivider(width))
		b.WriteString("\n")
		for _, line := range d.diff {
			b.WriteString(renderDiffLine(line))
			b.WriteString("\n")
		}
		b.WriteString(makeSectionDivider(width))
		b.WriteString("\n\n")
	case d.isWrite:
		b.WriteString(fmt.Sprintf(" Create file %s\n\n", d.writePath))
		b.WriteString(makeSectionDivider(width))
		b.WriteString("\n")
		for i, line := range d.contentLines {
			b.WriteString(fmt.Sprintf(" %2d %s\n", i+1, line))
		}
		b.WriteString(makeSectionDivider(width))
		b.WriteString("\n\n")
	}

	b.WriteString(" " + d.question() + "\n\n")
	options := []string{"1. Yes", "2. " + d.secondOption(), "3. No"}
	selections := []permissionSelection{selectYes, selectYesSession, selectNo}
	for i, opt := range options {
		cursor := "   "
		if d.selected == selections[i] {
			cursor = " ❯ "
		}
		b.WriteString(cursor + opt + "\n")
	}
	b.WriteString("\n Esc to cancel · Tab to add additional instructions")
	return b.String()
}

func renderDiffLine(line diffLine) string {
	if line.number > 0 {
		return fmt.Sprintf(" %d %s%s", line.number, line.prefix, line.content)
	}
	return fmt.Sprintf("    %s%s", line.prefix, line.content)
}

func (d *permissionDialog) question() string {
	switch {
	case d.isEdit:
		return fmt.Sprintf("Do you want to make this edit to %s?", d.editPath)
	case d.isWrite:
		return fmt.Sprintf("Do you want to create %s?", d.writePath)
	default:
		return "Do you want to proceed?"
	}
}

// secondOption phrases the session-grant option to match the command
// being approved.
func (d *permissionDialog) secondOption() string {
	if d.isEdit || d.isWrite {
		return "Yes, allow all edits during this session (shift+tab)"
	}
	if strings.Contains(d.command, "/etc/") {
		return "Yes, allow reading from etc/ from this project"
	}
	if name := commandBaseName(d.command); name != "" {
		return fmt.Sprintf("Yes, allow %s commands from this project", name)
	}
	return "Yes, allow this command from this project"
}

// toolDisplayName names the pending call for grant/deny messages.
func (d *permissionDialog) toolDisplayName() string {
	switch {
	case d.isEdit:
		return "Edit: " + d.editPath
	case d.isWrite:
		return "Write: " + d.writePath
	default:
		return "Bash: " + d.command
	}
}

// commandBaseName extracts the program name from the command's first
// word, or empty when there is no clean name.
func commandBaseName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	name := filepath.Base(fields[0])
	if name == "." || name == "/" || name == "" {
		return ""
	}
	return name
}
