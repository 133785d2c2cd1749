package tui

import "time"

// defaultTerminalWidth is assumed until the first window-size message.
const defaultTerminalWidth = 120

// displayState holds everything the view reads that is not input
// editing: response text, conversation transcript, panels, spinner.
type displayState struct {
	responseContent string
	isStreaming     bool
	isCommandOutput bool

	// conversationDisplay accumulates "❯ prompt" / "⏺ response" turns.
	conversationDisplay string
	isCompacted         bool

	terminalWidth      int
	showShortcutsPanel bool

	slashMenu *slashMenuState

	exitHint        exitHint
	exitHintShownAt time.Time

	spinnerFrame int
	spinnerVerb  string

	// pendingUserUUID and pendingAssistantUUID link the session log
	// records of a turn that is waiting on a permission decision.
	pendingUserUUID      string
	pendingAssistantUUID string

	// pendingPostGrantDisplay replaces the conversation tail once a
	// pending tool call is granted.
	pendingPostGrantDisplay string
}

func newDisplayState() displayState {
	return displayState{
		terminalWidth: defaultTerminalWidth,
		spinnerVerb:   spinnerVerbs[0],
	}
}
