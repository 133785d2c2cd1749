package tui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// planDecision is the resolved plan-approval outcome.
type planDecision struct {
	// kind: "clear_context_auto_accept", "auto_accept",
	// "manual_approve", "revised", "cancelled"
	kind     string
	feedback string
}

// planApprovalState drives the ExitPlanMode approval dialog: three
// approval rows plus a free-text revision row.
type planApprovalState struct {
	planContent  string
	planFilePath string

	cursor   int
	freeText string
}

const planFreeTextRow = 3

// parsePlanContent pulls the plan text out of the tool input, trying
// the key spellings the tool has used.
func parsePlanContent(raw json.RawMessage) string {
	var input map[string]json.RawMessage
	if err := json.Unmarshal(raw, &input); err == nil {
		for _, key := range []string{"plan", "plan_content", "planContent", "content"} {
			var text string
			if v, ok := input[key]; ok && json.Unmarshal(v, &text) == nil && text != "" {
				return text
			}
		}
	}
	return "# Plan\n\nNo content provided."
}

// CursorUp wraps from the top to the free-text row.
func (s *planApprovalState) CursorUp() {
	if s.cursor == 0 {
		s.cursor = planFreeTextRow
		return
	}
	s.cursor--
}

// CursorDown clamps at the free-text row.
func (s *planApprovalState) CursorDown() {
	if s.cursor < planFreeTextRow {
		s.cursor++
	}
}

// IsOnFreeText reports whether the cursor sits on the revision row.
func (s *planApprovalState) IsOnFreeText() bool {
	return s.cursor == planFreeTextRow
}

// SelectByNumber jumps to an approval row by its 1-based number.
func (s *planApprovalState) SelectByNumber(n int) {
	if n >= 1 && n <= planFreeTextRow {
		s.cursor = n - 1
	}
}

func (s *planApprovalState) PushRune(r rune) {
	if s.cursor == planFreeTextRow {
		s.freeText += string(r)
	}
}

func (s *planApprovalState) PopRune() {
	if s.cursor != planFreeTextRow {
		return
	}
	text := []rune(s.freeText)
	if len(text) > 0 {
		s.freeText = string(text[:len(text)-1])
	}
}

// Collect resolves the decision from the cursor position.
func (s *planApprovalState) Collect() planDecision {
	switch s.cursor {
	case 0:
		return planDecision{kind: "clear_context_auto_accept"}
	case 1:
		return planDecision{kind: "auto_accept"}
	case 2:
		return planDecision{kind: "manual_approve"}
	default:
		if s.freeText != "" {
			return planDecision{kind: "revised", feedback: s.freeText}
		}
		return planDecision{kind: "cancelled"}
	}
}

// Render draws the dialog at the given width.
func (s *planApprovalState) Render(width int) string {
	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n")
	b.WriteString(" Ready to code?\n")
	b.WriteString(" Here is Claude's plan:\n\n")

	border := " " + makeSectionDivider(width-2)
	b.WriteString(border + "\n")
	for _, line := range strings.Split(s.planContent, "\n") {
		b.WriteString(" " + line + "\n")
	}
	b.WriteString(border + "\n\n")

	options := []string{
		"Yes, clear context and auto-accept edits (shift+tab)",
		"Yes, auto-accept edits",
		"Yes, manually approve edits",
	}
	for i, opt := range options {
		cursor := "   "
		if s.cursor == i {
			cursor = " ❯ "
		}
		b.WriteString(fmt.Sprintf("%s%d. %s\n", cursor, i+1, opt))
	}
	freeCursor := "   "
	if s.cursor == planFreeTextRow {
		freeCursor = " ❯ "
	}
	if s.freeText != "" {
		b.WriteString(fmt.Sprintf("%s4. %s\n", freeCursor, s.freeText))
	} else {
		b.WriteString(fmt.Sprintf("%s4. Type here to tell Claude what to change\n", freeCursor))
	}

	b.WriteString(makeSeparator(width))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  ctrl-g to edit in VS Code · %s\n", s.planFilePath))
	b.WriteString("  Enter to select · ↑/↓ to navigate · Esc to cancel")
	return b.String()
}
