package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudeless/pkg/permission"
)

func TestModelDisplayName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"haiku", "Haiku 4.5"},
		{"sonnet", "Sonnet 4.5"},
		{"opus", "Opus 4.5"},
		{"claude-opus", "Opus 4.5"},
		{"claude-opus-4-5-20251101", "Opus 4.5"},
		{"claude-sonnet-4-20250514", "Sonnet 4"},
		{"claude-haiku-4-5-20251001", "Haiku 4.5"},
		{"gpt-4o", "gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, modelDisplayName(tt.model))
		})
	}
}

func TestExtractModelVersion(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"claude-opus-4-5-20251101", "4.5"},
		{"claude-sonnet-4-20250514", "4"},
		{"claude-haiku-4-5-20251001", "4.5"},
		{"claude-sonnet", ""},
		{"not-claude-4-5", ""},
		{"claude-opus-x-5", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractModelVersion(tt.model), tt.model)
	}
}

func TestPermissionModeStatusText(t *testing.T) {
	texts := map[permission.Mode]string{
		permission.ModeDefault:     "  ? for shortcuts",
		permission.ModePlan:        "  ⏸ plan mode on (shift+tab to cycle)",
		permission.ModeAcceptEdits: "  ⏵⏵ accept edits on (shift+tab to cycle)",
		permission.ModeBypass:      "  ⏵⏵ bypass permissions on (shift+tab to cycle)",
		permission.ModeDelegate:    "  delegate mode (shift+tab to cycle)",
		permission.ModeDontAsk:     "  don't ask mode (shift+tab to cycle)",
	}
	for mode, want := range texts {
		assert.Equal(t, want, permissionModeStatusText(mode))
	}
}

func TestStatusBarExitHints(t *testing.T) {
	m := newTestModel(t)

	m.display.exitHint = hintCtrlC
	m.display.exitHintShownAt = time.Now()
	assert.Equal(t, "  Press Ctrl-C again to exit", m.formatStatusBar(80))

	m.display.exitHint = hintCtrlD
	assert.Equal(t, "  Press Ctrl-D again to exit", m.formatStatusBar(80))

	m.display.exitHint = hintEscape
	bar := m.formatStatusBar(80)
	assert.Equal(t, 78, len([]rune(bar)))
	assert.True(t, strings.HasSuffix(bar, "Esc to clear again"))
}

func TestStatusBarThinkingOffWidth(t *testing.T) {
	m := newTestModel(t)
	m.thinkingEnabled = false

	bar := m.formatStatusBar(100)
	assert.Equal(t, 98, len([]rune(bar)))
	assert.True(t, strings.HasPrefix(bar, "  ? for shortcuts"))
	assert.True(t, strings.HasSuffix(bar, "Thinking off"))

	// Outside default mode the right flag is hidden.
	m.permissionMode = permission.ModePlan
	assert.Equal(t, permissionModeStatusText(permission.ModePlan), m.formatStatusBar(100))
}

func TestFormatHeaderLinesPlain(t *testing.T) {
	m := newTestModel(t)
	l1, l2, l3 := m.formatHeaderLines()

	assert.True(t, strings.HasPrefix(l1, " ▐▛███▜▌   Claudeless "))
	assert.Equal(t, "▝▜█████▛▘  Opus 4.5 · Claude Max", l2)
	assert.True(t, strings.HasPrefix(l3, "  ▘▘ ▝▝    "))
}

func TestProviderOverride(t *testing.T) {
	m := newTestModel(t)
	provider := "Bedrock"
	m.cfg.Provider = &provider

	_, l2, _ := m.formatHeaderLines()
	assert.Equal(t, "▝▜█████▛▘  Opus 4.5 · Bedrock", l2)
}

func TestWelcomeBackBoxGeometry(t *testing.T) {
	m := newTestModel(t)
	lines := m.formatWelcomeBackBox(100)

	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "╭─── Claudeless "))
	assert.True(t, strings.HasSuffix(lines[0], "╮"))
	assert.True(t, strings.HasSuffix(lines[10], "╯"))
	for _, line := range lines {
		assert.Equal(t, 100, len([]rune(line)), line)
	}

	assert.Contains(t, lines[2], "Welcome back!")
	assert.Contains(t, lines[8], "Opus 4.5 · Claude Max")
	assert.Contains(t, lines[1], "Tips for getting")
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/short", truncatePath("/short", 20))
	got := truncatePath("/very/long/path/to/some/deep/project/dir", 20)
	assert.True(t, strings.HasPrefix(got, "/…/"))
	assert.True(t, strings.HasSuffix(got, "/dir"))
	assert.LessOrEqual(t, len([]rune(got)), 20)
}

func TestCenterAndPadHelpers(t *testing.T) {
	assert.Equal(t, "  ab ", centerText("ab", 5))
	assert.Equal(t, "abcde", centerText("abcdefg", 5))
	assert.Equal(t, " ab  ", padLeftAligned("ab", 5))

	left, right := splitPad(5)
	assert.Equal(t, 3, left)
	assert.Equal(t, 2, right)
}

func TestFileExportWritesConversation(t *testing.T) {
	m := newTestModel(t)
	m.display.conversationDisplay = "❯ hello\n\n⏺ Hi there"
	m.mode = modeExportDialog
	m.export = newExportDialog(time.Now())
	m.export.filename = filepath.Join(t.TempDir(), "out.txt")
	target := m.export.filename

	m.doFileExport()
	assert.Equal(t, modeInput, m.mode)
	assert.Nil(t, m.export)
	assert.Equal(t, fmt.Sprintf("Conversation exported to: %s", target), m.display.responseContent)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "❯ hello\n\n⏺ Hi there", string(data))
}

func TestExportDialogSteps(t *testing.T) {
	d := newExportDialog(time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, "conversation_20260115_093000.txt", d.filename)

	d.MoveSelectionDown()
	assert.False(t, d.ConfirmSelection())
	assert.Equal(t, stepFilenameInput, d.step)

	d.PushRune('!')
	assert.True(t, strings.HasSuffix(d.filename, "!"))
	d.PopRune()
	assert.Equal(t, "conversation_20260115_093000.txt", d.filename)

	d.GoBack()
	assert.Equal(t, stepMethodSelection, d.step)
}
