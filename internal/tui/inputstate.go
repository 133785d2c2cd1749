package tui

import "strings"

// inputState is the hand-rolled line editor: buffer, cursor, history,
// undo stack, stash slot, and the bash ("!") mode flag.
type inputState struct {
	buffer    string
	cursorPos int

	history      []string
	historyIndex *int

	undoStack []string

	stash              *string
	showStashIndicator bool

	shellMode bool
}

// InsertRune inserts a character at the cursor.
func (s *inputState) InsertRune(r rune) {
	runes := []rune(s.buffer)
	if s.cursorPos > len(runes) {
		s.cursorPos = len(runes)
	}
	out := make([]rune, 0, len(runes)+1)
	out = append(out, runes[:s.cursorPos]...)
	out = append(out, r)
	out = append(out, runes[s.cursorPos:]...)
	s.buffer = string(out)
	s.cursorPos++
}

// Backspace deletes the character before the cursor.
func (s *inputState) Backspace() {
	runes := []rune(s.buffer)
	if s.cursorPos == 0 || len(runes) == 0 {
		return
	}
	out := append([]rune{}, runes[:s.cursorPos-1]...)
	out = append(out, runes[s.cursorPos:]...)
	s.buffer = string(out)
	s.cursorPos--
}

// DeleteAtCursor removes the character under the cursor.
func (s *inputState) DeleteAtCursor() {
	runes := []rune(s.buffer)
	if s.cursorPos >= len(runes) {
		return
	}
	out := append([]rune{}, runes[:s.cursorPos]...)
	out = append(out, runes[s.cursorPos+1:]...)
	s.buffer = string(out)
}

func (s *inputState) CursorLeft() {
	if s.cursorPos > 0 {
		s.cursorPos--
	}
}

func (s *inputState) CursorRight() {
	if s.cursorPos < len([]rune(s.buffer)) {
		s.cursorPos++
	}
}

func (s *inputState) CursorHome() { s.cursorPos = 0 }
func (s *inputState) CursorEnd()  { s.cursorPos = len([]rune(s.buffer)) }

// Submit records a nonempty buffer in history and clears the editor.
// The submitted text is returned.
func (s *inputState) Submit() string {
	text := s.buffer
	if text != "" {
		s.history = append(s.history, text)
	}
	s.buffer = ""
	s.cursorPos = 0
	s.undoStack = nil
	s.historyIndex = nil
	return text
}

// Clear drops the buffer without touching history.
func (s *inputState) Clear() {
	s.buffer = ""
	s.cursorPos = 0
}

// NavigateHistory moves through past submissions. dir is -1 for older
// (up) and +1 for newer (down). Walking past the newest entry clears
// the buffer.
func (s *inputState) NavigateHistory(dir int) {
	if len(s.history) == 0 {
		return
	}
	switch {
	case s.historyIndex == nil && dir < 0:
		idx := len(s.history) - 1
		s.historyIndex = &idx
	case s.historyIndex == nil:
		return
	case dir < 0:
		if *s.historyIndex > 0 {
			*s.historyIndex--
		}
	default:
		if *s.historyIndex+1 >= len(s.history) {
			s.historyIndex = nil
			s.buffer = ""
			s.cursorPos = 0
			s.undoStack = nil
			return
		}
		*s.historyIndex++
	}
	s.buffer = s.history[*s.historyIndex]
	s.cursorPos = len([]rune(s.buffer))
	s.undoStack = nil
}

// SnapshotUndo pushes the current buffer for ctrl+_ recovery.
func (s *inputState) SnapshotUndo() {
	s.undoStack = append(s.undoStack, s.buffer)
}

// Undo restores the most recent snapshot.
func (s *inputState) Undo() {
	if len(s.undoStack) == 0 {
		return
	}
	s.buffer = s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.cursorPos = len([]rune(s.buffer))
}

// DeleteWordBeforeCursor removes the word ending at the cursor.
func (s *inputState) DeleteWordBeforeCursor() {
	runes := []rune(s.buffer)
	before := string(runes[:s.cursorPos])
	after := string(runes[s.cursorPos:])

	trimmed := strings.TrimRight(before, " \t")
	if idx := strings.LastIndexAny(trimmed, " \t"); idx >= 0 {
		trimmed = trimmed[:idx+1]
	} else {
		trimmed = ""
	}
	s.buffer = trimmed + after
	s.cursorPos = len([]rune(trimmed))
}

// ClearBeforeCursor removes everything left of the cursor.
func (s *inputState) ClearBeforeCursor() {
	runes := []rune(s.buffer)
	s.buffer = string(runes[s.cursorPos:])
	s.cursorPos = 0
}

// ClearAfterCursor removes everything right of the cursor.
func (s *inputState) ClearAfterCursor() {
	runes := []rune(s.buffer)
	s.buffer = string(runes[:s.cursorPos])
}

// ToggleStash swaps the buffer with the stash slot.
func (s *inputState) ToggleStash() {
	if s.stash == nil {
		if s.buffer == "" {
			return
		}
		stashed := s.buffer
		s.stash = &stashed
		s.showStashIndicator = true
		s.buffer = ""
		s.cursorPos = 0
		return
	}
	restored := *s.stash
	s.stash = nil
	s.showStashIndicator = false
	s.buffer = restored
	s.cursorPos = len([]rune(restored))
}

// RestoreStash brings a stashed prompt back after a submit.
func (s *inputState) RestoreStash() {
	if s.stash == nil {
		return
	}
	s.buffer = *s.stash
	s.cursorPos = len([]rune(s.buffer))
	s.stash = nil
	s.showStashIndicator = false
}
