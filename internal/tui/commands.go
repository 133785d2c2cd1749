package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"claudeless/pkg/hooks"
	"claudeless/pkg/permission"
)

// resolveModelID expands a model alias like "haiku" to the full API
// model ID. Full IDs pass through unchanged.
func resolveModelID(model string) string {
	switch strings.ToLower(model) {
	case "haiku", "claude-haiku":
		return "claude-haiku-4-5-20251001"
	case "sonnet", "claude-sonnet":
		return "claude-sonnet-4-20250514"
	case "opus", "claude-opus":
		return "claude-opus-4-5-20251101"
	}
	return model
}

// submitInput routes the buffer to a slash command, a shell command, or
// the prompt pipeline.
func (m *Model) submitInput() tea.Cmd {
	input := m.input.buffer
	wasShellMode := m.input.shellMode
	m.input.shellMode = false
	m.input.buffer = ""
	m.input.cursorPos = 0
	m.input.undoStack = nil

	historyEntry := input
	if wasShellMode {
		historyEntry = "! " + input
	}
	if historyEntry != "" {
		m.input.history = append(m.input.history, historyEntry)
	}
	m.input.historyIndex = nil

	switch {
	case !wasShellMode && strings.HasPrefix(input, "/"):
		m.handleCommand(input)
		return nil
	case wasShellMode:
		return m.executeShellCommand(input)
	default:
		return m.processPrompt(input)
	}
}

// handleCommand dispatches slash commands like /compact and /clear.
func (m *Model) handleCommand(input string) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	// Fold the previous exchange into the conversation history.
	if !m.display.isCommandOutput && m.display.responseContent != "" {
		if m.display.conversationDisplay != "" {
			m.display.conversationDisplay += "\n\n"
		}
		m.display.conversationDisplay += "⏺ " + m.display.responseContent
	}
	if m.display.isCommandOutput && m.display.responseContent != "" {
		lines := strings.Split(m.display.responseContent, "\n")
		for i, line := range lines {
			lines[i] = "  ⎿  " + line
		}
		m.display.conversationDisplay += "\n" + strings.Join(lines, "\n")
	}

	m.display.isCommandOutput = true
	m.isCompacting = false

	prompt := "❯ " + strings.TrimSpace(input)
	if m.display.conversationDisplay == "" {
		m.display.conversationDisplay = prompt
	} else {
		m.display.conversationDisplay += "\n\n" + prompt
	}

	switch cmd {
	case "/clear":
		m.turnCount = 0
		m.toolHistory = nil
		m.status.inputTokens = 0
		m.status.outputTokens = 0
		m.sessionGrants = map[string]struct{}{}
		m.display.conversationDisplay = "❯ " + strings.TrimSpace(input)
		m.display.responseContent = "(no content)"

	case "/compact":
		if m.isCompacting {
			m.display.responseContent = "Failed to compact: Compaction already in progress"
		} else {
			m.mode = modeResponding
			m.isCompacting = true
			m.compactingStarted = time.Now()
			m.display.spinnerFrame = 0
			m.display.spinnerVerb = "Compacting"
			m.display.responseContent = ""
		}

	case "/fork":
		if m.turnCount > 0 {
			m.display.responseContent = "Conversation forked"
		} else {
			m.display.responseContent = "Failed to fork conversation: No conversation to fork"
		}

	case "/help", "/?":
		m.mode = modeHelpDialog
		m.help = newHelpDialog(m.productVersion())

	case "/context":
		usage := newContextUsage()
		if m.cfg.Model != "" {
			usage = newContextUsageWithModel(resolveModelID(m.cfg.Model))
		}
		m.display.responseContent = formatContextUsage(usage)

	case "/exit":
		farewell := randomFarewell()
		m.display.responseContent = farewell
		m.exitMessage = farewell
		m.shouldExit = true
		m.exitReason = ExitUserQuit

	case "/todos":
		m.display.responseContent = formatTodos(m.todos)

	case "/tasks":
		m.mode = modeTasksDialog
		m.tasks = newTasksDialog(nil)

	case "/export":
		m.mode = modeExportDialog
		m.export = newExportDialog(time.Now())

	case "/hooks":
		m.mode = modeHooksDialog
		m.hooks = newHooksDialog(m.activeHookCount())

	case "/memory":
		m.mode = modeMemoryDialog
		m.memory = newMemoryDialog()

	case "/plan":
		if m.permissionMode == permission.ModePlan {
			m.display.responseContent = "Already in plan mode. No plan written yet."
		} else {
			m.permissionMode = permission.ModePlan
			m.display.responseContent = "Enabled plan mode"
		}

	default:
		m.display.responseContent = fmt.Sprintf("Unknown command: %s", input)
	}
}

// activeHookCount sums configured hooks across events for the /hooks
// dialog header.
func (m *Model) activeHookCount() int {
	exec := m.rt.HookExecutor()
	if exec == nil {
		return 0
	}
	total := 0
	for _, kind := range hookKinds {
		total += exec.HookCount(hooks.Event(kind.name))
	}
	return total
}
