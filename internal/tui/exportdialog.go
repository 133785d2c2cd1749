package tui

import (
	"fmt"
	"strings"
	"time"
)

// exportMethod selects where /export writes the conversation.
type exportMethod int

const (
	exportClipboard exportMethod = iota
	exportFile
)

// exportStep tracks the two-step dialog flow.
type exportStep int

const (
	stepMethodSelection exportStep = iota
	stepFilenameInput
)

// exportDialog is the /export overlay.
type exportDialog struct {
	step           exportStep
	selectedMethod exportMethod
	filename       string
}

func newExportDialog(now time.Time) *exportDialog {
	return &exportDialog{
		filename: fmt.Sprintf("conversation_%s.txt", now.Format("20060102_150405")),
	}
}

func (d *exportDialog) MoveSelectionUp()   { d.selectedMethod = exportClipboard }
func (d *exportDialog) MoveSelectionDown() { d.selectedMethod = exportFile }

// ConfirmSelection advances to the filename step for file export and
// reports true when the clipboard path should run now.
func (d *exportDialog) ConfirmSelection() bool {
	if d.selectedMethod == exportClipboard {
		return true
	}
	d.step = stepFilenameInput
	return false
}

func (d *exportDialog) GoBack() { d.step = stepMethodSelection }

func (d *exportDialog) PushRune(r rune) { d.filename += string(r) }

func (d *exportDialog) PopRune() {
	runes := []rune(d.filename)
	if len(runes) > 0 {
		d.filename = string(runes[:len(runes)-1])
	}
}

func renderExportDialog(d *exportDialog, width int) string {
	inner := width - 2
	if inner < 0 {
		inner = 0
	}
	top := "╭" + strings.Repeat("─", inner) + "╮"
	bottom := "╰" + strings.Repeat("─", inner) + "╯"
	pad := func(s string) string {
		visible := len([]rune(s))
		fill := inner - visible
		if fill < 0 {
			fill = 0
		}
		return "│" + s + strings.Repeat(" ", fill) + "│"
	}

	var lines []string
	switch d.step {
	case stepMethodSelection:
		clipCursor, fileCursor := " ", " "
		if d.selectedMethod == exportClipboard {
			clipCursor = "❯"
		} else {
			fileCursor = "❯"
		}
		lines = []string{
			top,
			pad(""),
			pad(" Export Conversation"),
			pad(""),
			pad(" Select export method:"),
			pad(""),
			pad(fmt.Sprintf(" %s %-20s  %s", clipCursor, "1. Copy to clipboard", "Copy the conversation to your system clipboard")),
			pad(fmt.Sprintf(" %s %-20s  %s", fileCursor, "2. Save to file", "Save the conversation to a file in the current directory")),
			pad(""),
			bottom,
			"  Esc to cancel",
		}
	case stepFilenameInput:
		lines = []string{
			top,
			pad(""),
			pad(" Export Conversation"),
			pad(""),
			pad(" Enter filename:"),
			pad(""),
			pad(fmt.Sprintf(" > %s", d.filename)),
			pad(""),
			bottom,
			"  Enter to save · Esc to go back",
		}
	}
	return strings.Join(lines, "\n")
}
