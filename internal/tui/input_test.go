package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudeless/pkg/permission"
)

func TestTypingEditsBuffer(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "hello world")
	assert.Equal(t, "hello world", m.input.buffer)
	assert.Equal(t, 11, m.input.cursorPos)

	press(m, tea.KeyBackspace)
	assert.Equal(t, "hello worl", m.input.buffer)

	press(m, tea.KeyHome)
	press(m, tea.KeyDelete)
	assert.Equal(t, "ello worl", m.input.buffer)

	press(m, tea.KeyEnd)
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlW})
	assert.Equal(t, "ello ", m.input.buffer)

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Empty(t, m.input.buffer)
}

func TestCtrlCDoubleTapExits(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "draft")

	press(m, tea.KeyCtrlC)
	assert.Empty(t, m.input.buffer)
	assert.Equal(t, hintCtrlC, m.display.exitHint)
	assert.False(t, m.shouldExit)

	press(m, tea.KeyCtrlC)
	assert.True(t, m.shouldExit)
	assert.Equal(t, ExitInterrupted, m.exitReason)
}

func TestCtrlCHintExpires(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyCtrlC)
	m.display.exitHintShownAt = time.Now().Add(-3 * time.Second)

	// A stale hint means this press starts a fresh window.
	press(m, tea.KeyCtrlC)
	assert.False(t, m.shouldExit)
	assert.Equal(t, hintCtrlC, m.display.exitHint)
}

func TestCtrlDQuitsOnlyWhenEmpty(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "text")
	press(m, tea.KeyCtrlD)
	assert.Equal(t, hintNone, m.display.exitHint)

	m.input.Clear()
	press(m, tea.KeyCtrlD)
	assert.Equal(t, hintCtrlD, m.display.exitHint)
	assert.False(t, m.shouldExit)

	press(m, tea.KeyCtrlD)
	assert.True(t, m.shouldExit)
	assert.Equal(t, ExitUserQuit, m.exitReason)
}

func TestEscapeDoubleTapClearsInput(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "draft")

	press(m, tea.KeyEsc)
	assert.Equal(t, "draft", m.input.buffer)
	assert.Equal(t, hintEscape, m.display.exitHint)

	press(m, tea.KeyEsc)
	assert.Empty(t, m.input.buffer)
	assert.Equal(t, hintNone, m.display.exitHint)
}

func TestShellModeEntryAndExit(t *testing.T) {
	m := newTestModel(t)
	pressRune(m, '!')
	assert.True(t, m.input.shellMode)
	assert.Empty(t, m.input.buffer)

	typeText(m, "ls")
	assert.Equal(t, "ls", m.input.buffer)

	// Backspacing past the start leaves shell mode.
	press(m, tea.KeyBackspace)
	press(m, tea.KeyBackspace)
	press(m, tea.KeyBackspace)
	assert.False(t, m.input.shellMode)

	// With text already typed, '!' is a literal character.
	typeText(m, "a")
	pressRune(m, '!')
	assert.Equal(t, "a!", m.input.buffer)
	assert.False(t, m.input.shellMode)
}

func TestEscapeLeavesShellMode(t *testing.T) {
	m := newTestModel(t)
	pressRune(m, '!')
	typeText(m, "echo hi")

	press(m, tea.KeyEsc)
	assert.False(t, m.input.shellMode)
	assert.Empty(t, m.input.buffer)
}

func TestQuestionMarkTogglesShortcutsPanel(t *testing.T) {
	m := newTestModel(t)
	pressRune(m, '?')
	assert.True(t, m.display.showShortcutsPanel)
	assert.Empty(t, m.input.buffer)

	press(m, tea.KeyEsc)
	assert.False(t, m.display.showShortcutsPanel)

	typeText(m, "what")
	pressRune(m, '?')
	assert.Equal(t, "what?", m.input.buffer)
	assert.False(t, m.display.showShortcutsPanel)
}

func TestShiftTabCyclesPermissionModes(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyShiftTab)
	assert.Equal(t, permission.ModePlan, m.permissionMode)
	press(m, tea.KeyShiftTab)
	assert.Equal(t, permission.ModeAcceptEdits, m.permissionMode)
	press(m, tea.KeyShiftTab)
	assert.Equal(t, permission.ModeDefault, m.permissionMode)

	m.allowBypass = true
	press(m, tea.KeyShiftTab)
	press(m, tea.KeyShiftTab)
	press(m, tea.KeyShiftTab)
	assert.Equal(t, permission.ModeBypass, m.permissionMode)
}

func TestSlashMenuFollowsBuffer(t *testing.T) {
	m := newTestModel(t)
	pressRune(m, '/')
	require.NotNil(t, m.display.slashMenu)
	assert.NotEmpty(t, m.display.slashMenu.filtered)

	typeText(m, "hel")
	require.NotNil(t, m.display.slashMenu)
	for _, cmd := range m.display.slashMenu.filtered {
		assert.Contains(t, cmd.Name, "hel")
	}

	// Tab completes the highlighted command.
	press(m, tea.KeyTab)
	assert.Nil(t, m.display.slashMenu)
	assert.Equal(t, "/help", m.input.buffer)
}

func TestSlashMenuEscapeKeepsText(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "/mod")
	require.NotNil(t, m.display.slashMenu)

	press(m, tea.KeyEsc)
	assert.Nil(t, m.display.slashMenu)
	assert.Equal(t, "/mod", m.input.buffer)
	assert.Equal(t, hintEscape, m.display.exitHint)
}

func TestHistoryNavigation(t *testing.T) {
	m := newTestModel(t)
	m.input.history = []string{"first", "second"}

	press(m, tea.KeyUp)
	assert.Equal(t, "second", m.input.buffer)
	press(m, tea.KeyUp)
	assert.Equal(t, "first", m.input.buffer)
	press(m, tea.KeyDown)
	assert.Equal(t, "second", m.input.buffer)
	press(m, tea.KeyDown)
	assert.Empty(t, m.input.buffer)
}

func TestUndoRestoresSnapshot(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "git commit")
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlUnderscore})
	assert.Equal(t, "git", m.input.buffer)
}

func TestStashToggle(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "half-written prompt")

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Empty(t, m.input.buffer)
	assert.True(t, m.input.showStashIndicator)

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "half-written prompt", m.input.buffer)
	assert.False(t, m.input.showStashIndicator)
}

func TestStashRestoresAfterTurn(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "saved for later")
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})

	m.restoreInputState()
	assert.Equal(t, "saved for later", m.input.buffer)
	assert.False(t, m.input.showStashIndicator)
}

func TestCtrlLClearsResponse(t *testing.T) {
	m := newTestModel(t)
	m.display.responseContent = "old answer"
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.display.responseContent)
}

func TestInterruptWhileResponding(t *testing.T) {
	m := newTestModel(t)
	m.mode = modeResponding
	m.display.responseContent = "partial"
	m.display.isStreaming = true

	press(m, tea.KeyEsc)
	assert.Equal(t, modeInput, m.mode)
	assert.False(t, m.display.isStreaming)
	assert.Equal(t, "partial\n\n[Interrupted]", m.display.responseContent)
}

func TestTrustPromptKeys(t *testing.T) {
	t.Run("grant with y", func(t *testing.T) {
		cfg := testConfig()
		cfg.Trusted = false
		m := New(buildTestRuntime(t, nil), cfg)

		pressRune(m, 'y')
		assert.Equal(t, modeInput, m.mode)
		assert.True(t, m.trustGranted)
		assert.Nil(t, m.trust)
	})

	t.Run("decline with enter on No", func(t *testing.T) {
		cfg := testConfig()
		cfg.Trusted = false
		m := New(buildTestRuntime(t, nil), cfg)

		press(m, tea.KeyTab)
		assert.False(t, m.trust.selectedYes)
		press(m, tea.KeyEnter)
		assert.True(t, m.shouldExit)
		assert.Equal(t, ExitUserQuit, m.exitReason)
	})

	t.Run("untrusted and logged out chains into setup", func(t *testing.T) {
		cfg := testConfig()
		cfg.Trusted = false
		cfg.LoggedIn = false
		m := New(buildTestRuntime(t, nil), cfg)

		pressRune(m, 'y')
		assert.Equal(t, modeSetup, m.mode)
		require.NotNil(t, m.setup)
	})
}

func TestBypassConfirmKeys(t *testing.T) {
	t.Run("default selection exits", func(t *testing.T) {
		cfg := testConfig()
		cfg.PermissionMode = permission.ModeBypass
		cfg.BypassConfirmationNeeded = true
		m := New(buildTestRuntime(t, nil), cfg)

		press(m, tea.KeyEnter)
		assert.True(t, m.shouldExit)
		assert.Equal(t, ExitUserQuit, m.exitReason)
	})

	t.Run("accepting enables bypass", func(t *testing.T) {
		cfg := testConfig()
		cfg.PermissionMode = permission.ModeBypass
		cfg.BypassConfirmationNeeded = true
		m := New(buildTestRuntime(t, nil), cfg)

		press(m, tea.KeyUp)
		press(m, tea.KeyEnter)
		assert.Equal(t, modeInput, m.mode)
		assert.Equal(t, permission.ModeBypass, m.permissionMode)
		assert.True(t, m.allowBypass)
	})
}

func TestThinkingToggleDialog(t *testing.T) {
	m := newTestModel(t)
	pressAlt(m, 't')
	require.NotNil(t, m.thinking)
	assert.Equal(t, modeThinkingToggle, m.mode)

	pressRune(m, '2')
	assert.False(t, m.thinkingEnabled)
	assert.Equal(t, modeInput, m.mode)

	pressAlt(m, 't')
	press(m, tea.KeyTab)
	press(m, tea.KeyEnter)
	assert.True(t, m.thinkingEnabled)
	assert.Equal(t, modeInput, m.mode)
}

func TestModelPickerAppliesSelection(t *testing.T) {
	m := newTestModel(t)
	pressAlt(m, 'p')
	require.NotNil(t, m.modelPicker)
	assert.Equal(t, modeModelPicker, m.mode)

	before := m.status.model
	press(m, tea.KeyDown)
	press(m, tea.KeyEnter)
	assert.Equal(t, modeInput, m.mode)
	assert.NotEqual(t, before, m.status.model)
}

func TestPermissionDialogSelection(t *testing.T) {
	m := newTestModel(t)
	m.mode = modePermission
	m.perm = &permissionRequest{dialog: permissionDialog{
		isBash:      true,
		command:     "rm -rf build",
		description: "Execute: rm -rf build",
	}}
	m.lastPrompt = "clean up"

	press(m, tea.KeyDown)
	assert.Equal(t, selectYesSession, m.perm.dialog.selected)
	press(m, tea.KeyUp)
	assert.Equal(t, selectYes, m.perm.dialog.selected)
}

func TestPermissionDenyReturnsToInput(t *testing.T) {
	m := newTestModel(t)
	m.mode = modePermission
	m.perm = &permissionRequest{dialog: permissionDialog{
		isBash:      true,
		command:     "ls",
		description: "Execute: ls",
	}}

	pressRune(m, 'n')
	assert.Nil(t, m.perm)
	assert.Equal(t, modeInput, m.mode)
}

func TestSlashExitQuitsWithFarewell(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "/exit")
	m.display.slashMenu = nil
	press(m, tea.KeyEnter)

	assert.True(t, m.shouldExit)
	assert.Equal(t, ExitUserQuit, m.exitReason)
	assert.NotEmpty(t, m.ExitMessage())
}

func TestSlashClearResetsSession(t *testing.T) {
	m := newTestModel(t)
	m.turnCount = 3
	m.status.inputTokens = 100
	m.status.outputTokens = 200
	m.display.conversationDisplay = "❯ old"

	typeText(m, "/clear")
	m.display.slashMenu = nil
	press(m, tea.KeyEnter)

	assert.Zero(t, m.turnCount)
	assert.Zero(t, m.status.inputTokens)
	assert.Zero(t, m.status.outputTokens)
	assert.Equal(t, "(no content)", m.display.responseContent)
	assert.Equal(t, "❯ /clear", m.display.conversationDisplay)
}

func TestSlashHelpOpensDialog(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "/help")
	m.display.slashMenu = nil
	press(m, tea.KeyEnter)

	assert.Equal(t, modeHelpDialog, m.mode)
	require.NotNil(t, m.help)

	press(m, tea.KeyEsc)
	assert.Equal(t, modeInput, m.mode)
	assert.Contains(t, m.display.responseContent, "Help dialog dismissed")
}
