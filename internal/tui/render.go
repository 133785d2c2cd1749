package tui

import (
	"fmt"
	"strings"
)

// welcomeBoxMinWidth is the narrowest terminal the welcome-back box
// renders in. Below it the standard header is used instead.
const welcomeBoxMinWidth = 60

// View renders the whole screen as one string.
func (m *Model) View() string {
	width := m.display.terminalWidth

	if dialog, ok := m.renderActiveDialog(width); ok {
		return dialog
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, m.renderHeaderArea(width)...)
	lines = append(lines, "")

	if conversation := m.renderConversationArea(); conversation != "" {
		lines = append(lines, conversation, "")
	}

	if m.mode == modePermission && m.perm != nil {
		lines = append(lines, m.perm.dialog.Render(width))
		return strings.Join(lines, "\n")
	}

	useColors := m.cfg.IsTTY

	var separator string
	switch {
	case m.input.shellMode && useColors:
		separator = styledBashSeparator(width)
	case useColors:
		separator = styledSeparator(width)
	default:
		separator = makeSeparator(width) + "\n"
	}

	if m.input.showStashIndicator {
		lines = append(lines, m.renderStashIndicator())
	}
	lines = append(lines, separator)
	inputDisplay, hasArgumentHint := m.renderInputLine(useColors)
	lines = append(lines, inputDisplay)
	lines = append(lines, separator)

	if menu := m.renderSlashMenu(width); menu != "" {
		lines = append(lines, menu)
	}

	switch {
	case m.display.showShortcutsPanel:
		lines = append(lines, shortcutPanelLines()...)
	case hasArgumentHint:
		// The status bar yields while an argument hint is shown.
	case m.input.shellMode && useColors:
		lines = append(lines, styledBashStatus())
	case useColors:
		lines = append(lines, m.formatStatusBarStyled(width))
	default:
		lines = append(lines, m.formatStatusBar(width))
	}

	return strings.Join(lines, "\n")
}

// renderActiveDialog returns the full-screen dialog for the current
// mode, if one is active. The permission dialog is not included; it
// renders inline in place of the input area.
func (m *Model) renderActiveDialog(width int) (string, bool) {
	switch m.mode {
	case modeSetup:
		if m.setup != nil {
			return renderSetupWizard(m.setup, width), true
		}
	case modeTrust:
		if m.trust != nil {
			return renderTrustPrompt(m.trust, width), true
		}
	case modeBypassConfirm:
		if m.bypass != nil {
			return renderBypassConfirmDialog(m.bypass, width), true
		}
	case modeThinkingToggle:
		if m.thinking != nil {
			return renderThinkingDialog(m.thinking, width), true
		}
	case modeTasksDialog:
		if m.tasks != nil {
			return renderTasksDialog(m.tasks, width), true
		}
	case modeExportDialog:
		if m.export != nil {
			return renderExportDialog(m.export, width), true
		}
	case modeHelpDialog:
		if m.help != nil {
			return renderHelpDialog(m.help, width), true
		}
	case modeHooksDialog:
		if m.hooks != nil {
			return renderHooksDialog(m.hooks, width), true
		}
	case modeMemoryDialog:
		if m.memory != nil {
			return renderMemoryDialog(m.memory, width), true
		}
	case modeModelPicker:
		if m.modelPicker != nil {
			return renderModelPickerDialog(m.modelPicker, width), true
		}
	case modeElicitation:
		if m.elicit != nil {
			return m.elicit.Render(width), true
		}
	case modePlanApproval:
		if m.plan != nil {
			return m.plan.Render(width), true
		}
	}
	return "", false
}

// renderHeaderArea returns the welcome-back box when configured and the
// conversation is still empty, otherwise the standard 3-line header.
func (m *Model) renderHeaderArea(width int) []string {
	showWelcomeBox := m.cfg.ShowWelcomeBack &&
		m.display.conversationDisplay == "" &&
		m.display.responseContent == "" &&
		width >= welcomeBoxMinWidth

	if showWelcomeBox {
		return m.formatWelcomeBackBox(width)
	}
	h1, h2, h3 := m.formatHeaderLines()
	return []string{h1, h2, h3}
}

// renderConversationArea builds the transcript block above the input:
// compaction markers, past turns, and the in-flight response or
// spinner. Returns "" when there is nothing to show.
func (m *Model) renderConversationArea() string {
	var content strings.Builder

	if m.display.isCompacted {
		content.WriteString("✻ Conversation compacted (ctrl+o for history)")
		content.WriteString("\n\n\n")
	}

	if m.display.conversationDisplay != "" {
		content.WriteString(m.display.conversationDisplay)
	}

	if m.display.responseContent != "" || m.isCompacting {
		switch {
		case m.isCompacting && !m.display.isCompacted:
			if content.Len() > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString(m.renderSpinner("Compacting conversation"))
			content.WriteString("…\n  ⎿  Tip: Use /memory to view and manage Claude memory")
		case (m.mode == modeResponding || m.mode == modeThinking) &&
			!m.display.isCommandOutput && m.display.responseContent == "":
			if content.Len() > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString(m.renderSpinner(m.display.spinnerVerb))
			content.WriteString("…")
		case m.display.isCommandOutput:
			if content.Len() > 0 {
				content.WriteString("\n")
			}
			// First line gets the elbow connector, the rest pass
			// through untouched.
			for i, line := range strings.Split(m.display.responseContent, "\n") {
				if i > 0 {
					content.WriteString("\n")
				}
				if i == 0 {
					content.WriteString("  ⎿  " + line)
				} else {
					content.WriteString(line)
				}
			}
		default:
			if content.Len() > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString("⏺ " + m.display.responseContent)
		}
	}

	return content.String()
}

// renderInputLine builds the prompt row and reports whether an
// argument hint was appended.
func (m *Model) renderInputLine(useColors bool) (string, bool) {
	var display string
	switch {
	case m.input.shellMode:
		if m.input.buffer == "" {
			ph := "Try \"fix lint errors\""
			if m.cfg.Placeholder != nil {
				ph = *m.cfg.Placeholder
			}
			if useColors {
				display = styledBashPlaceholder(ph)
			} else {
				display = "! " + ph
			}
		} else if useColors {
			display = fmt.Sprintf("%s%s! %s%s", ansiReset, fg(bypassPink), m.input.buffer, ansiReset)
		} else {
			display = "! " + m.input.buffer
		}
	case m.input.buffer == "":
		if m.display.conversationDisplay == "" && m.display.responseContent == "" {
			ph := "Try \"write a test for scenario.go\""
			if m.cfg.Placeholder != nil {
				ph = *m.cfg.Placeholder
			}
			if useColors {
				display = styledPlaceholder(ph)
			} else {
				display = "❯ " + ph
			}
		} else if useColors {
			// Reset clears the separator's dim so the chevron is white.
			display = ansiReset + "❯"
		} else {
			display = "❯"
		}
	default:
		if useColors {
			display = fmt.Sprintf("%s❯ %s", ansiReset, m.input.buffer)
		} else {
			display = "❯ " + m.input.buffer
		}
	}

	if hint, ok := m.argumentHint(); ok {
		return display + " " + hint, true
	}
	return display, false
}

// argumentHint returns the inline hint for a fully typed slash command,
// shown only once the autocomplete menu has closed.
func (m *Model) argumentHint() (string, bool) {
	if m.display.slashMenu != nil || !strings.HasPrefix(m.input.buffer, "/") {
		return "", false
	}
	cmdText := strings.TrimPrefix(m.input.buffer, "/")
	fields := strings.Fields(cmdText)
	if len(fields) == 0 {
		return "", false
	}
	cmd, ok := findSlashCommand(fields[0])
	if !ok || cmd.ArgumentHint == "" {
		return "", false
	}
	return cmd.ArgumentHint, true
}

// renderSlashMenu formats the open autocomplete menu, or "" when the
// menu is closed or empty.
func (m *Model) renderSlashMenu(width int) string {
	menu := m.display.slashMenu
	if menu == nil || len(menu.filtered) == 0 {
		return ""
	}

	visibleEnd := len(menu.filtered)
	if visibleEnd > menuVisibleCount {
		visibleEnd = menuVisibleCount
	}
	// 2-space indent + 24-char command column + 2 chars right margin.
	descMax := width - 28
	if descMax < 0 {
		descMax = 0
	}

	var rows []string
	for _, cmd := range menu.filtered[:visibleEnd] {
		desc := truncateWithEllipsis(cmd.Description, descMax)
		rows = append(rows, fmt.Sprintf("  %-24s%s", "/"+cmd.Name, desc))
	}
	return strings.Join(rows, "\n")
}

// renderStashIndicator marks a stashed draft above the input.
func (m *Model) renderStashIndicator() string {
	return fmt.Sprintf("  %s›%s Stashed (auto-restores after submit)", fg(logoOrange), ansiReset)
}

// renderSpinner prefixes text with the current animation frame.
func (m *Model) renderSpinner(text string) string {
	cycle := spinnerCycle()
	frame := cycle[m.display.spinnerFrame%len(cycle)]
	return frame + " " + text
}

// truncateWithEllipsis caps s at maxChars characters, marking the cut.
func truncateWithEllipsis(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	cut := maxChars - 1
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + "…"
}
