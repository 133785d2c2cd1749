package tui

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"claudeless/pkg/state"
)

// toolCallRecord remembers one executed tool call for the /compact summary.
type toolCallRecord struct {
	tool   string
	input  map[string]any
	output string
}

var farewells = []string{"Goodbye!", "Bye!", "See ya!", "Catch you later!"}

func randomFarewell() string {
	return farewells[rand.Intn(len(farewells))]
}

// dismissDialog closes the active dialog and reports it as command output.
func (m *Model) dismissDialog(name string) {
	m.mode = modeInput
	m.clearDialogs()
	m.display.responseContent = name + " dismissed"
	m.display.isCommandOutput = true
}

func (m *Model) clearDialogs() {
	m.trust = nil
	m.bypass = nil
	m.thinking = nil
	m.perm = nil
	m.tasks = nil
	m.modelPicker = nil
	m.export = nil
	m.help = nil
	m.hooks = nil
	m.memory = nil
	m.elicit = nil
	m.plan = nil
	m.setup = nil
}

// checkExitHintTimeout drops a stale double-tap hint after the timeout.
func (m *Model) checkExitHintTimeout(now time.Time) {
	if m.display.exitHint == hintNone {
		return
	}
	timeout := time.Duration(m.cfg.Timeouts.ExitHintMS) * time.Millisecond
	if now.Sub(m.display.exitHintShownAt) >= timeout {
		m.display.exitHint = hintNone
	}
}

// checkCompacting finishes a pending /compact once the delay has elapsed.
func (m *Model) checkCompacting(now time.Time) {
	if !m.isCompacting {
		return
	}
	delay := time.Duration(m.cfg.Timeouts.CompactDelayMS) * time.Millisecond
	if now.Sub(m.compactingStarted) < delay {
		return
	}
	m.isCompacting = false
	m.mode = modeInput
	m.display.isCompacted = true

	summary := m.buildToolSummary()
	if summary == "" {
		m.display.responseContent = "Compacted (ctrl+o to see full summary)"
	} else {
		m.display.responseContent = "Compacted (ctrl+o to see full summary)\n" + summary
	}
	m.display.isCommandOutput = true
	m.display.conversationDisplay = "❯ /compact"
}

func formatTodos(todos []state.TodoItem) string {
	if len(todos) == 0 {
		return "No todos currently tracked"
	}
	lines := make([]string, 0, len(todos))
	for _, item := range todos {
		status := "[ ]"
		switch item.Status {
		case state.TodoInProgress:
			status = "[*]"
		case state.TodoCompleted:
			status = "[x]"
		}
		lines = append(lines, status+" "+item.Content)
	}
	return strings.Join(lines, "\n")
}

func formatContextUsage(usage contextUsage) string {
	cells := usage.gridCells()
	lines := make([]string, 0, 12)

	for row := 0; row < 9; row++ {
		var cellText strings.Builder
		for _, c := range cells[row*10 : row*10+10] {
			cellText.WriteRune(c)
			cellText.WriteByte(' ')
		}
		rowCells := strings.TrimRight(cellText.String(), " ")

		var label string
		switch row {
		case 1:
			label = "  Estimated usage by category"
		case 2:
			label = fmt.Sprintf("  ⛁ System prompt: %s tokens (%.1f%%)",
				formatTokenCount(usage.systemPromptTokens), usage.percentage(usage.systemPromptTokens))
		case 3:
			label = fmt.Sprintf("  ⛁ System tools: %s tokens (%.1f%%)",
				formatTokenCount(usage.systemToolsTokens), usage.percentage(usage.systemToolsTokens))
		case 4:
			label = fmt.Sprintf("  ⛁ Memory files: %s tokens (%.1f%%)",
				formatTokenCount(usage.memoryFilesTokens), usage.percentage(usage.memoryFilesTokens))
		case 5:
			label = fmt.Sprintf("  ⛁ Messages: %s tokens (%.1f%%)",
				formatTokenCount(usage.messagesTokens), usage.percentage(usage.messagesTokens))
		case 6:
			label = fmt.Sprintf("  ⛶ Free space: %s (%.1f%%)",
				formatTokenCount(usage.freeSpaceTokens), usage.percentage(usage.freeSpaceTokens))
		case 7:
			label = fmt.Sprintf("  ⛝ Autocompact buffer: %s tokens (%.1f%%)",
				formatTokenCount(usage.autocompactBufferTokens), usage.percentage(usage.autocompactBufferTokens))
		}

		lines = append(lines, fmt.Sprintf("     %s   %s", rowCells, label))
	}

	lines = append(lines, "", "     Memory files · /memory")
	for _, file := range usage.memoryFiles {
		lines = append(lines, fmt.Sprintf("     └ %s: %d tokens", file.path, file.tokens))
	}

	return strings.Join(lines, "\n")
}

// buildToolSummary lists the session's tool activity for /compact output.
func (m *Model) buildToolSummary() string {
	summaries := make([]string, 0, len(m.toolHistory))
	for i := range m.toolHistory {
		if s, ok := formatToolSummary(&m.toolHistory[i]); ok {
			summaries = append(summaries, s)
		}
	}
	return strings.Join(summaries, "\n")
}

func formatToolSummary(rec *toolCallRecord) (string, bool) {
	inputString := func(key string) (string, bool) {
		v, ok := rec.input[key].(string)
		return v, ok
	}

	switch rec.tool {
	case "Read":
		path, ok := inputString("file_path")
		if !ok {
			return "", false
		}
		lineCount := 0
		if rec.output != "" {
			lineCount = len(strings.Split(strings.TrimSuffix(rec.output, "\n"), "\n"))
		}
		return fmt.Sprintf("Read %s (%d lines)", filepath.Base(path), lineCount), true
	case "Write":
		path, ok := inputString("file_path")
		if !ok {
			return "", false
		}
		return "Wrote " + filepath.Base(path), true
	case "Edit":
		path, ok := inputString("file_path")
		if !ok {
			return "", false
		}
		return "Edited " + filepath.Base(path), true
	case "Bash":
		cmd, ok := inputString("command")
		if !ok {
			return "", false
		}
		if len(cmd) > 30 {
			cmd = cmd[:27] + "..."
		}
		return fmt.Sprintf("Ran `%s`", cmd), true
	}
	return "", false
}

// extractBashPrefix derives the session-grant prefix for a bash command.
// The command word is kept, plus the directory part of a leading absolute
// path argument so related file accesses share one grant.
func extractBashPrefix(command string) string {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) >= 2 && strings.HasPrefix(tokens[1], "/") {
		if idx := strings.LastIndex(tokens[1], "/"); idx >= 0 {
			return tokens[0] + " " + tokens[1][:idx+1]
		}
	}
	return tokens[0]
}

// sessionGrantKey identifies what a "don't ask again this session" grant
// covers for the given dialog.
func sessionGrantKey(d *permissionDialog) string {
	switch {
	case d.isBash:
		return "bash-prefix:" + extractBashPrefix(d.command)
	case d.isEdit:
		return "edit-all"
	case d.isWrite:
		return "write-all"
	}
	return ""
}
