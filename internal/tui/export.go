package tui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// doClipboardExport copies the conversation and closes the dialog.
func (m *Model) doClipboardExport() {
	content := m.formatConversationForExport()

	cmd, err := clipboardCommand()
	if err != nil {
		m.display.responseContent = fmt.Sprintf("Failed to access clipboard: %s", err)
	} else {
		cmd.Stdin = strings.NewReader(content)
		if err := cmd.Run(); err != nil {
			m.display.responseContent = fmt.Sprintf("Failed to copy to clipboard: %s", err)
		} else {
			m.display.responseContent = "Conversation copied to clipboard"
		}
	}

	m.mode = modeInput
	m.export = nil
	m.display.isCommandOutput = true
}

// doFileExport writes the conversation to the typed filename.
func (m *Model) doFileExport() {
	filename := "conversation.txt"
	if m.export != nil && m.export.filename != "" {
		filename = m.export.filename
	}

	content := m.formatConversationForExport()
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		m.display.responseContent = fmt.Sprintf("Failed to write file: %s", err)
	} else {
		m.display.responseContent = fmt.Sprintf("Conversation exported to: %s", filename)
	}

	m.mode = modeInput
	m.export = nil
	m.display.isCommandOutput = true
}

// formatConversationForExport exports the visible transcript.
func (m *Model) formatConversationForExport() string {
	return m.display.conversationDisplay
}

// clipboardCommand picks the platform clipboard writer.
func clipboardCommand() (*exec.Cmd, error) {
	if runtime.GOOS == "darwin" {
		return exec.Command("pbcopy"), nil
	}
	for _, candidate := range [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	} {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return exec.Command(candidate[0], candidate[1:]...), nil
		}
	}
	return nil, fmt.Errorf("no clipboard utility found")
}
