package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudeless/pkg/clock"
	"claudeless/pkg/permission"
	"claudeless/pkg/runtime"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

func buildTestRuntime(t *testing.T, mutate func(*runtime.CLI)) *runtime.Runtime {
	t.Helper()
	t.Setenv(state.EnvStateDir, t.TempDir())
	cli := runtime.NewCLI()
	if mutate != nil {
		mutate(cli)
	}
	b, err := runtime.NewBuilder(cli)
	require.NoError(t, err)
	b.WithClock(clock.NewFake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
	rt, err := b.BuildFromCLI()
	require.NoError(t, err)
	return rt
}

func testConfig() Config {
	return Config{
		Trusted:          true,
		LoggedIn:         true,
		Model:            "claude-opus-4-5-20251101",
		WorkingDirectory: "/tmp/project",
		PermissionMode:   permission.ModeDefault,
		Timeouts:         scenario.ResolveTimeouts(nil),
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return New(buildTestRuntime(t, nil), testConfig())
}

func press(m *Model, keyType tea.KeyType) tea.Cmd {
	return m.handleKey(tea.KeyMsg{Type: keyType})
}

func pressRune(m *Model, r rune) tea.Cmd {
	return m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func pressAlt(m *Model, r rune) tea.Cmd {
	return m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true})
}

func typeText(m *Model, text string) {
	for _, r := range text {
		if r == ' ' {
			press(m, tea.KeySpace)
			continue
		}
		pressRune(m, r)
	}
}

func TestNewStartsInInputMode(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, modeInput, m.mode)
	assert.Equal(t, permission.ModeDefault, m.permissionMode)
	assert.True(t, m.thinkingEnabled)
	assert.NotEmpty(t, m.status.sessionID)
}

func TestNewUntrustedShowsTrustPrompt(t *testing.T) {
	cfg := testConfig()
	cfg.Trusted = false
	cfg.WorkingDirectory = "/home/sam/project"
	m := New(buildTestRuntime(t, nil), cfg)

	assert.Equal(t, modeTrust, m.mode)
	require.NotNil(t, m.trust)
	assert.Equal(t, "/home/sam/project", m.trust.workingDirectory)
	assert.True(t, m.trust.selectedYes)
}

func TestNewBypassModeNeedsConfirmation(t *testing.T) {
	cfg := testConfig()
	cfg.PermissionMode = permission.ModeBypass
	cfg.BypassConfirmationNeeded = true
	m := New(buildTestRuntime(t, nil), cfg)

	assert.Equal(t, modeBypassConfirm, m.mode)
	require.NotNil(t, m.bypass)
	assert.False(t, m.bypass.selectedYes)
}

func TestNewLoggedOutStartsSetup(t *testing.T) {
	cfg := testConfig()
	cfg.LoggedIn = false
	m := New(buildTestRuntime(t, nil), cfg)

	assert.Equal(t, modeSetup, m.mode)
	require.NotNil(t, m.setup)
}

func TestProductVersionFollowsClaudeVersion(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "2.1.12", m.productVersion())

	ver := "3.0.1"
	m.cfg.ClaudeVersion = &ver
	assert.Equal(t, "3.0.1", m.productVersion())
}

func TestWindowSizeUpdatesWidth(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, defaultTerminalWidth, m.display.terminalWidth)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 80, m.display.terminalWidth)
}

func TestPromptRoundTrip(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "hello")
	assert.Equal(t, "hello", m.input.buffer)

	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, modeThinking, m.mode)
	assert.Empty(t, m.input.buffer)
	assert.Equal(t, []string{"hello"}, m.input.history)
	assert.Contains(t, m.display.conversationDisplay, "❯ hello")

	// Deliver the finished turn the way the runtime would.
	msg := cmd()
	turn, ok := msg.(turnMsg)
	require.True(t, ok)
	require.NoError(t, turn.err)

	m.Update(turn)
	assert.Equal(t, modeInput, m.mode)
	assert.Equal(t, "Hello! I'm Claudeless!", m.display.responseContent)
	assert.False(t, m.display.isCommandOutput)
	assert.NotZero(t, m.status.outputTokens)
}

func TestTurnErrorShowsErrorResponse(t *testing.T) {
	m := newTestModel(t)
	m.mode = modeThinking

	m.Update(turnMsg{prompt: "x", err: assert.AnError})
	assert.Equal(t, modeInput, m.mode)
	assert.Contains(t, m.display.responseContent, "Error: ")
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		failure scenario.FailureSpec
		want    string
	}{
		{
			name:    "network unreachable",
			failure: scenario.FailureSpec{Type: scenario.FailureNetworkUnreachable},
			want:    "Error: Network is unreachable",
		},
		{
			name:    "auth error",
			failure: scenario.FailureSpec{Type: scenario.FailureAuthError, Message: "Invalid API key"},
			want:    "Error: Invalid API key",
		},
		{
			name:    "rate limit",
			failure: scenario.FailureSpec{Type: scenario.FailureRateLimit, RetryAfter: 30},
			want:    "Error: Rate limited. Retry after 30 seconds.",
		},
		{
			name:    "partial response",
			failure: scenario.FailureSpec{Type: scenario.FailurePartialResponse, PartialText: "I was going"},
			want:    "Partial response: I was going",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.handleFailure(&tt.failure)
			assert.Equal(t, tt.want, m.display.responseContent)
			assert.Equal(t, modeInput, m.mode)
		})
	}
}

func TestTickAdvancesSpinnerWhileResponding(t *testing.T) {
	m := newTestModel(t)
	m.mode = modeResponding
	frame := m.display.spinnerFrame

	m.Update(tickMsg(time.Now()))
	assert.NotEqual(t, frame, m.display.spinnerFrame)

	m.mode = modeInput
	frame = m.display.spinnerFrame
	m.Update(tickMsg(time.Now()))
	assert.Equal(t, frame, m.display.spinnerFrame)
}

func TestTickExpiresExitHint(t *testing.T) {
	m := newTestModel(t)
	m.showExitHint(hintCtrlC)
	m.display.exitHintShownAt = time.Now().Add(-3 * time.Second)

	m.Update(tickMsg(time.Now()))
	assert.Equal(t, hintNone, m.display.exitHint)
}

func TestPendingHookMessageRunsAsNextTurn(t *testing.T) {
	m := newTestModel(t)
	continuation := "keep going"
	m.pendingHookMessage = &continuation

	cmd := m.checkPendingHookMessage()
	require.NotNil(t, cmd)
	assert.Nil(t, m.pendingHookMessage)
	assert.Equal(t, modeThinking, m.mode)
	assert.Contains(t, m.display.conversationDisplay, "❯ keep going")
}
