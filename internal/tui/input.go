package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"claudeless/pkg/hooks"
	"claudeless/pkg/permission"
)

// handleKey dispatches a key press to the handler for the active mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeSetup:
		return m.handleSetupKey(msg)
	case modeTrust:
		return m.handleTrustKey(msg)
	case modeBypassConfirm:
		return m.handleBypassConfirmKey(msg)
	case modeInput:
		return m.handleInputKey(msg)
	case modePermission:
		m.handlePermissionKey(msg)
	case modeResponding, modeThinking:
		m.handleRespondingKey(msg)
	case modeThinkingToggle:
		m.handleThinkingKey(msg)
	case modeTasksDialog:
		m.handleTasksKey(msg)
	case modeModelPicker:
		m.handleModelPickerKey(msg)
	case modeExportDialog:
		m.handleExportKey(msg)
	case modeHelpDialog:
		m.handleHelpKey(msg)
	case modeHooksDialog:
		m.handleHooksKey(msg)
	case modeMemoryDialog:
		m.handleMemoryKey(msg)
	case modeElicitation:
		return m.handleElicitationKey(msg)
	case modePlanApproval:
		return m.handlePlanApprovalKey(msg)
	}
	return nil
}

// withinExitHint reports whether hint is showing and still fresh.
func (m *Model) withinExitHint(hint exitHint) bool {
	if m.display.exitHint != hint || m.display.exitHintShownAt.IsZero() {
		return false
	}
	timeout := time.Duration(m.cfg.Timeouts.ExitHintMS) * time.Millisecond
	return time.Since(m.display.exitHintShownAt) < timeout
}

func (m *Model) showExitHint(hint exitHint) {
	m.display.exitHint = hint
	m.display.exitHintShownAt = time.Now()
}

func (m *Model) clearExitHint() {
	m.display.exitHint = hintNone
	m.display.exitHintShownAt = time.Time{}
}

func (m *Model) exit(reason ExitReason) {
	m.shouldExit = true
	m.exitReason = reason
}

// handleInputKey is the main line-editor key handler.
func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	// Slash menu navigation takes precedence while the menu is open.
	if m.display.slashMenu != nil {
		switch msg.String() {
		case "down":
			m.display.slashMenu.SelectNext()
			return nil
		case "up":
			m.display.slashMenu.SelectPrev()
			return nil
		case "tab":
			if cmd, ok := m.display.slashMenu.Selected(); ok {
				m.input.buffer = "/" + cmd.Name
				m.input.cursorPos = len([]rune(m.input.buffer))
			}
			m.display.slashMenu = nil
			return nil
		case "esc":
			// Close the menu but keep the text.
			m.display.slashMenu = nil
			m.showExitHint(hintEscape)
			return nil
		}
	}

	switch msg.String() {
	case "ctrl+c":
		return m.handleInterrupt()

	case "ctrl+z":
		return tea.Suspend

	case "ctrl+d":
		if m.input.buffer == "" {
			if m.withinExitHint(hintCtrlD) {
				m.exit(ExitUserQuit)
			} else {
				m.showExitHint(hintCtrlD)
			}
		}

	case "ctrl+l":
		m.display.responseContent = ""

	case "alt+t":
		m.thinking = &thinkingDialog{selectedEnabled: m.thinkingEnabled, currentEnabled: m.thinkingEnabled}
		m.mode = modeThinkingToggle

	case "alt+p":
		m.modelPicker = newModelPickerDialog(m.status.model)
		m.mode = modeModelPicker

	case "ctrl+t":
		if len(m.todos) > 0 {
			m.display.responseContent = formatTodos(m.todos)
			m.display.isCommandOutput = true
			m.display.conversationDisplay = "Todo List"
		}

	case "shift+tab":
		m.permissionMode = m.permissionMode.CycleNext(m.allowBypass)

	case "enter":
		m.display.slashMenu = nil
		m.clearExitHint()
		if m.input.buffer != "" {
			return m.submitInput()
		}

	case "esc":
		switch {
		case m.display.showShortcutsPanel:
			m.display.showShortcutsPanel = false
		case m.input.shellMode:
			m.input.shellMode = false
			m.input.Clear()
		case m.input.buffer != "":
			if m.withinExitHint(hintEscape) {
				m.input.Clear()
				m.clearExitHint()
			} else {
				m.showExitHint(hintEscape)
			}
		}

	case "backspace":
		if m.input.cursorPos > 0 {
			m.input.Backspace()
		} else if m.input.shellMode && m.input.buffer == "" {
			m.input.shellMode = false
		}
		m.updateSlashMenu()

	case "delete":
		m.input.DeleteAtCursor()
		m.updateSlashMenu()

	case "left":
		m.input.CursorLeft()

	case "right":
		m.input.CursorRight()

	case "up":
		m.input.NavigateHistory(-1)

	case "down":
		m.input.NavigateHistory(1)

	case "home", "ctrl+a":
		m.input.CursorHome()

	case "end", "ctrl+e":
		m.input.CursorEnd()

	case "ctrl+u":
		m.input.ClearBeforeCursor()
		m.updateSlashMenu()

	case "ctrl+k":
		m.input.ClearAfterCursor()
		m.updateSlashMenu()

	case "ctrl+w":
		m.input.DeleteWordBeforeCursor()
		m.updateSlashMenu()

	case "ctrl+_":
		m.input.Undo()

	case "ctrl+s":
		m.input.ToggleStash()

	case "?":
		if m.input.buffer == "" && !m.display.showShortcutsPanel {
			m.display.showShortcutsPanel = true
		} else {
			m.typeRune('?')
		}

	case "!":
		if m.input.buffer == "" && !m.input.shellMode {
			m.input.shellMode = true
			m.clearExitHint()
		} else {
			m.typeRune('!')
		}

	case " ":
		m.typeRune(' ')

	default:
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				m.typeRune(r)
			}
		}
	}
	return nil
}

// typeRune inserts a character, snapshotting undo at word boundaries.
func (m *Model) typeRune(r rune) {
	if r == ' ' || m.input.buffer == "" {
		m.input.SnapshotUndo()
	}
	m.input.InsertRune(r)
	m.input.historyIndex = nil
	m.clearExitHint()
	m.updateSlashMenu()
}

// updateSlashMenu opens, refilters, or closes the autocomplete menu to
// track the buffer.
func (m *Model) updateSlashMenu() {
	if len(m.input.buffer) > 0 && m.input.buffer[0] == '/' && !m.input.shellMode {
		filter := m.input.buffer[1:]
		if m.display.slashMenu != nil {
			m.display.slashMenu.SetFilter(filter)
		} else {
			m.display.slashMenu = newSlashMenuState(filter)
		}
	} else {
		m.display.slashMenu = nil
	}
}

// handleRespondingKey allows interrupting a streaming response.
func (m *Model) handleRespondingKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.handleInterrupt()
	}
}

// handleInterrupt implements Ctrl+C across modes.
func (m *Model) handleInterrupt() tea.Cmd {
	switch m.mode {
	case modeInput:
		if m.withinExitHint(hintCtrlC) {
			m.exit(ExitInterrupted)
		} else {
			m.input.Clear()
			m.showExitHint(hintCtrlC)
		}

	case modeResponding, modeThinking:
		m.display.isStreaming = false
		m.isCompacting = false
		m.mode = modeInput
		m.display.responseContent += "\n\n[Interrupted]"

	case modePermission:
		if m.perm != nil {
			m.perm.dialog.selected = selectNo
		}
		m.confirmPermission()

	case modeTrust, modeBypassConfirm, modeSetup:
		m.exit(ExitUserQuit)

	case modeThinkingToggle, modeTasksDialog, modeModelPicker:
		m.clearDialogs()
		m.mode = modeInput

	case modeExportDialog:
		m.clearDialogs()
		m.mode = modeInput
		m.display.responseContent = "Export cancelled"
		m.display.isCommandOutput = true

	case modeHelpDialog:
		m.dismissDialog("Help dialog")

	case modeHooksDialog:
		m.dismissDialog("Hooks dialog")

	case modeMemoryDialog:
		m.dismissDialog("Memory dialog")

	case modeElicitation:
		m.cancelElicitation()

	case modePlanApproval:
		m.cancelPlanApproval()
	}
	return nil
}

// grantTrust marks the directory trusted and advances to setup or
// input. The queued initial prompt runs once no dialog remains.
func (m *Model) grantTrust() tea.Cmd {
	m.trustGranted = true
	m.trust = nil
	if !m.cfg.LoggedIn {
		m.setup = newSetupState(m.productVersion())
		m.mode = modeSetup
		return nil
	}
	m.mode = modeInput
	if m.initialPrompt != nil {
		prompt := *m.initialPrompt
		m.initialPrompt = nil
		return m.processPrompt(prompt)
	}
	return nil
}

func (m *Model) handleTrustKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.handleInterrupt()
	case "left", "right", "tab":
		if m.trust != nil {
			m.trust.selectedYes = !m.trust.selectedYes
		}
	case "enter":
		if m.trust != nil {
			if m.trust.selectedYes {
				return m.grantTrust()
			}
			m.exit(ExitUserQuit)
		}
	case "y", "Y":
		return m.grantTrust()
	case "n", "N", "esc":
		m.exit(ExitUserQuit)
	}
	return nil
}

func (m *Model) handleBypassConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.handleInterrupt()
	case "up", "down", "tab":
		if m.bypass != nil {
			m.bypass.selectedYes = !m.bypass.selectedYes
		}
	case "enter":
		if m.bypass == nil {
			return nil
		}
		if m.bypass.selectedYes {
			m.permissionMode = permission.ModeBypass
			m.allowBypass = true
			m.bypass = nil
			m.mode = modeInput
			if m.initialPrompt != nil {
				prompt := *m.initialPrompt
				m.initialPrompt = nil
				return m.processPrompt(prompt)
			}
		} else {
			m.exit(ExitUserQuit)
		}
	case "esc":
		m.exit(ExitUserQuit)
	}
	return nil
}

func (m *Model) handleThinkingKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "up", "down", "tab":
		if m.thinking != nil {
			m.thinking.selectedEnabled = !m.thinking.selectedEnabled
		}
	case "1":
		m.thinkingEnabled = true
		m.thinking = nil
		m.mode = modeInput
	case "2":
		m.thinkingEnabled = false
		m.thinking = nil
		m.mode = modeInput
	case "enter":
		if m.thinking != nil {
			m.thinkingEnabled = m.thinking.selectedEnabled
		}
		m.thinking = nil
		m.mode = modeInput
	case "esc":
		m.thinking = nil
		m.mode = modeInput
	}
}

func (m *Model) handlePermissionKey(msg tea.KeyMsg) {
	if m.perm == nil {
		return
	}
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "up":
		m.perm.dialog.selected = m.perm.dialog.selected.Prev()
	case "down":
		m.perm.dialog.selected = m.perm.dialog.selected.Next()
	case "enter":
		m.confirmPermission()
	case "1", "y", "Y":
		m.perm.dialog.selected = selectYes
		m.confirmPermission()
	case "2":
		m.perm.dialog.selected = selectYesSession
		m.confirmPermission()
	case "3", "n", "N", "esc":
		m.perm.dialog.selected = selectNo
		m.confirmPermission()
	}
}

func (m *Model) handleTasksKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "esc":
		m.dismissDialog("Background tasks dialog")
	case "up":
		if m.tasks != nil {
			m.tasks.MoveSelectionUp()
		}
	case "down":
		if m.tasks != nil {
			m.tasks.MoveSelectionDown()
		}
	case "enter":
		m.tasks = nil
		m.mode = modeInput
	}
}

func (m *Model) handleModelPickerKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "up", "k":
		if m.modelPicker != nil {
			m.modelPicker.MoveUp()
		}
	case "down", "j", "tab":
		if m.modelPicker != nil {
			m.modelPicker.MoveDown()
		}
	case "enter":
		if m.modelPicker != nil {
			m.status.model = m.modelPicker.selected.ModelID()
		}
		m.modelPicker = nil
		m.mode = modeInput
	case "esc":
		m.modelPicker = nil
		m.mode = modeInput
	}
}

func (m *Model) handleExportKey(msg tea.KeyMsg) {
	if m.export == nil {
		return
	}
	switch m.export.step {
	case stepMethodSelection:
		switch msg.String() {
		case "ctrl+c":
			m.handleInterrupt()
		case "esc":
			m.export = nil
			m.mode = modeInput
			m.display.responseContent = "Export cancelled"
			m.display.isCommandOutput = true
		case "up":
			m.export.MoveSelectionUp()
		case "down":
			m.export.MoveSelectionDown()
		case "enter":
			if m.export.ConfirmSelection() {
				m.doClipboardExport()
			}
		case "1":
			m.export.selectedMethod = exportClipboard
			m.doClipboardExport()
		case "2":
			m.export.selectedMethod = exportFile
			m.export.step = stepFilenameInput
		}
	case stepFilenameInput:
		switch msg.String() {
		case "ctrl+c":
			m.handleInterrupt()
		case "esc":
			m.export.GoBack()
		case "enter":
			m.doFileExport()
		case "backspace":
			m.export.PopRune()
		default:
			if msg.Type == tea.KeyRunes {
				for _, r := range msg.Runes {
					m.export.PushRune(r)
				}
			}
		}
	}
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) {
	if m.help == nil {
		return
	}
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "esc":
		m.dismissDialog("Help dialog")
	case "tab", "right":
		m.help.NextTab()
	case "left", "shift+tab":
		m.help.PrevTab()
	case "up":
		m.help.SelectPrev(len(slashCommands))
	case "down":
		m.help.SelectNext(len(slashCommands))
	}
}

func (m *Model) handleHooksKey(msg tea.KeyMsg) {
	if m.hooks == nil {
		return
	}
	switch m.hooks.view {
	case viewHookList:
		switch msg.String() {
		case "ctrl+c":
			m.handleInterrupt()
		case "esc":
			m.dismissDialog("Hooks dialog")
		case "up":
			m.hooks.SelectPrev()
		case "down":
			m.hooks.SelectNext()
		case "enter":
			m.hooks.OpenMatchers()
		}
	case viewMatchers:
		switch msg.String() {
		case "ctrl+c":
			m.handleInterrupt()
		case "esc":
			m.hooks.CloseMatchers()
		}
	}
}

func (m *Model) handleMemoryKey(msg tea.KeyMsg) {
	if m.memory == nil {
		return
	}
	switch msg.String() {
	case "ctrl+c":
		m.handleInterrupt()
	case "esc":
		m.dismissDialog("Memory dialog")
	case "up":
		m.memory.SelectPrev()
	case "down":
		m.memory.SelectNext()
	case "enter":
		if entry := m.memory.SelectedEntry(); entry != nil {
			m.display.responseContent = fmt.Sprintf("Selected: %s - %s", entry.source.name(), entryPath(*entry))
			m.display.isCommandOutput = true
			m.memory = nil
			m.mode = modeInput
		}
	}
}

func (m *Model) handleElicitationKey(msg tea.KeyMsg) tea.Cmd {
	if m.elicit == nil {
		return nil
	}
	onFreeText := m.elicit.cursor == m.elicit.typeRowIndex()

	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelElicitation()
	case "up":
		m.elicit.CursorUp()
	case "down":
		m.elicit.CursorDown()
	case "tab":
		m.elicit.NextQuestion()
	case "shift+tab":
		m.elicit.PrevQuestion()
	case "enter":
		return m.confirmElicitation()
	case "backspace":
		m.elicit.PopRune()
	case " ":
		if onFreeText {
			m.elicit.PushRune(' ')
		} else {
			m.elicit.ToggleOrSelect()
		}
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !onFreeText {
			if r := msg.Runes[0]; r >= '1' && r <= '9' {
				m.elicit.SelectByNumber(int(r - '0'))
				return nil
			}
		}
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				m.elicit.PushRune(r)
			}
		}
	}
	return nil
}

func (m *Model) handlePlanApprovalKey(msg tea.KeyMsg) tea.Cmd {
	if m.plan == nil {
		return nil
	}
	onFreeText := m.plan.IsOnFreeText()

	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelPlanApproval()
	case "up":
		m.plan.CursorUp()
	case "down":
		m.plan.CursorDown()
	case "enter":
		return m.confirmPlanApproval()
	case "backspace":
		m.plan.PopRune()
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !onFreeText {
			if r := msg.Runes[0]; r >= '1' && r <= '3' {
				m.plan.SelectByNumber(int(r - '0'))
				return m.confirmPlanApproval()
			}
		}
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				m.plan.PushRune(r)
			}
		}
	}
	return nil
}

func (m *Model) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	if m.setup == nil {
		return nil
	}
	switch m.setup.step {
	case stepThemeSelection:
		switch msg.String() {
		case "ctrl+t":
			m.setup.syntaxHighlighting = !m.setup.syntaxHighlighting
		case "ctrl+c", "esc":
			m.exit(ExitUserQuit)
		case "up":
			m.setup.ThemeUp()
		case "down":
			m.setup.ThemeDown()
		case "1", "2", "3", "4", "5", "6":
			m.setup.selectedTheme = int(msg.Runes[0] - '1')
		case "enter":
			m.setup.AdvanceToLogin()
		}
	case stepLoginMethod:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.exit(ExitUserQuit)
		case "up":
			m.setup.LoginUp()
		case "down":
			m.setup.LoginDown()
		case "1", "2", "3":
			m.setup.selectedLogin = int(msg.Runes[0] - '1')
		case "enter":
			m.setup = nil
			m.mode = modeInput
			cmds := []tea.Cmd{
				m.fireNotification(hooks.NotificationAuthSuccess, "Auth Success", "Login completed"),
			}
			if m.initialPrompt != nil {
				prompt := *m.initialPrompt
				m.initialPrompt = nil
				cmds = append(cmds, m.processPrompt(prompt))
			}
			return tea.Batch(cmds...)
		}
	}
	return nil
}
