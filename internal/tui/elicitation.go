package tui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// elicitationQuestion mirrors the AskUserQuestion tool input.
type elicitationQuestion struct {
	Header      string              `json:"header"`
	Question    string              `json:"question"`
	MultiSelect bool                `json:"multiSelect"`
	Options     []elicitationOption `json:"options"`
}

type elicitationOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type elicitationInput struct {
	Questions []elicitationQuestion `json:"questions"`
}

// elicitationAnswer is the outcome for one question.
type elicitationAnswer struct {
	// kind: "answered", "free_text", "chat", "cancelled"
	kind     string
	selected []int
	freeText string
}

// elicitationState drives the AskUserQuestion dialog. The cursor walks
// options first, then the free-text row, then the "Chat about this"
// row.
type elicitationState struct {
	questions []elicitationQuestion
	current   int

	cursor   int
	selected map[int]map[int]bool
	freeText map[int]string
	answers  []elicitationAnswer
}

// parseElicitationInput decodes the tool call's questions.
func parseElicitationInput(raw json.RawMessage) (*elicitationState, error) {
	var input elicitationInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(input.Questions) == 0 {
		return nil, fmt.Errorf("no questions provided")
	}
	return &elicitationState{
		questions: input.Questions,
		selected:  make(map[int]map[int]bool),
		freeText:  make(map[int]string),
	}, nil
}

func (s *elicitationState) question() elicitationQuestion {
	return s.questions[s.current]
}

// Row indexes: options, then typeRowIndex, then chatRowIndex.
func (s *elicitationState) typeRowIndex() int { return len(s.question().Options) }
func (s *elicitationState) chatRowIndex() int { return len(s.question().Options) + 1 }

// CursorUp wraps from the top to the free-text row, skipping chat.
func (s *elicitationState) CursorUp() {
	if s.cursor == 0 {
		s.cursor = s.typeRowIndex()
		return
	}
	s.cursor--
}

// CursorDown clamps at the chat row.
func (s *elicitationState) CursorDown() {
	if s.cursor < s.chatRowIndex() {
		s.cursor++
	}
}

// SelectByNumber picks a defined option by its 1-based number.
func (s *elicitationState) SelectByNumber(n int) {
	if n < 1 || n > len(s.question().Options) {
		return
	}
	s.cursor = n - 1
	s.ToggleOrSelect()
}

// ToggleOrSelect toggles the option under the cursor. Single-select
// questions replace any earlier pick.
func (s *elicitationState) ToggleOrSelect() {
	if s.cursor >= len(s.question().Options) {
		return
	}
	sel := s.selected[s.current]
	if sel == nil {
		sel = make(map[int]bool)
		s.selected[s.current] = sel
	}
	if s.question().MultiSelect {
		sel[s.cursor] = !sel[s.cursor]
		return
	}
	for k := range sel {
		delete(sel, k)
	}
	sel[s.cursor] = true
}

// NextQuestion advances with Tab on multi-question dialogs.
func (s *elicitationState) NextQuestion() {
	if s.current+1 < len(s.questions) {
		s.current++
		s.cursor = 0
	}
}

func (s *elicitationState) PrevQuestion() {
	if s.current > 0 {
		s.current--
		s.cursor = 0
	}
}

// PushRune appends to the free-text answer when the cursor is on the
// type row.
func (s *elicitationState) PushRune(r rune) {
	if s.cursor == s.typeRowIndex() {
		s.freeText[s.current] += string(r)
	}
}

func (s *elicitationState) PopRune() {
	if s.cursor != s.typeRowIndex() {
		return
	}
	text := []rune(s.freeText[s.current])
	if len(text) > 0 {
		s.freeText[s.current] = string(text[:len(text)-1])
	}
}

// CollectAnswer resolves the current question from the cursor position.
// An empty selection defaults to the first option.
func (s *elicitationState) CollectAnswer() elicitationAnswer {
	switch {
	case s.cursor == s.chatRowIndex():
		return elicitationAnswer{kind: "chat"}
	case s.cursor == s.typeRowIndex():
		if text := s.freeText[s.current]; text != "" {
			return elicitationAnswer{kind: "free_text", freeText: text}
		}
		return elicitationAnswer{kind: "cancelled"}
	default:
		sel := s.selected[s.current]
		if len(sel) == 0 {
			return elicitationAnswer{kind: "answered", selected: []int{0}}
		}
		var picked []int
		for i := range s.question().Options {
			if sel[i] {
				picked = append(picked, i)
			}
		}
		return elicitationAnswer{kind: "answered", selected: picked}
	}
}

// Answers resolves one wire answer per question. Free text wins over
// selections; an untouched question falls back to its first option.
func (s *elicitationState) Answers() []string {
	answers := make([]string, len(s.questions))
	for q := range s.questions {
		if text := s.freeText[q]; text != "" {
			answers[q] = text
			continue
		}
		options := s.questions[q].Options
		sel := s.selected[q]
		if len(sel) == 0 {
			if len(options) > 0 {
				answers[q] = options[0].Label
			}
			continue
		}
		var labels []string
		for i := range options {
			if sel[i] {
				labels = append(labels, options[i].Label)
			}
		}
		answers[q] = strings.Join(labels, ", ")
	}
	return answers
}

// AnswerText joins the selected labels for the wire answer.
func (s *elicitationState) AnswerText(q int, a elicitationAnswer) string {
	switch a.kind {
	case "free_text":
		return a.freeText
	case "answered":
		labels := make([]string, 0, len(a.selected))
		for _, i := range a.selected {
			labels = append(labels, s.questions[q].Options[i].Label)
		}
		return strings.Join(labels, ", ")
	}
	return ""
}

// Render draws the dialog at the given width.
func (s *elicitationState) Render(width int) string {
	q := s.question()
	sel := s.selected[s.current]

	var b strings.Builder
	b.WriteString(makeSeparator(width))
	b.WriteString("\n")

	marker := "☐"
	if q.MultiSelect {
		checked := 0
		for i := range q.Options {
			if sel[i] {
				checked++
			}
		}
		switch {
		case checked == len(q.Options) && checked > 0:
			marker = "☑"
		case checked > 0:
			marker = "☒"
		}
	}
	b.WriteString(fmt.Sprintf(" %s %s\n\n", marker, q.Header))
	b.WriteString(" " + q.Question + "\n\n")

	for i, opt := range q.Options {
		cursor := "  "
		if s.cursor == i {
			cursor = "❯ "
		}
		b.WriteString(fmt.Sprintf(" %s%d. %s\n", cursor, i+1, opt.Label))
		if opt.Description != "" {
			b.WriteString("     " + opt.Description + "\n")
		}
	}

	typeCursor := "  "
	if s.cursor == s.typeRowIndex() {
		typeCursor = "❯ "
	}
	if text := s.freeText[s.current]; text != "" {
		b.WriteString(fmt.Sprintf(" %s%d. %s\n", typeCursor, s.typeRowIndex()+1, text))
	} else {
		b.WriteString(fmt.Sprintf(" %s%d. Type something.\n", typeCursor, s.typeRowIndex()+1))
	}

	b.WriteString(makeSeparator(width))
	b.WriteString("\n")
	chatCursor := "  "
	if s.cursor == s.chatRowIndex() {
		chatCursor = "❯ "
	}
	b.WriteString(fmt.Sprintf(" %s%d. Chat about this\n\n", chatCursor, s.chatRowIndex()+1))

	var footer strings.Builder
	if len(s.questions) > 1 {
		footer.WriteString(fmt.Sprintf("  Question %d/%d · Tab for next · ", s.current+1, len(s.questions)))
	} else {
		footer.WriteString("  ")
	}
	if q.MultiSelect {
		footer.WriteString("Space to toggle · Enter to confirm · Esc to cancel")
	} else {
		footer.WriteString("Enter to select · ↑/↓ to navigate · Esc to cancel")
	}
	b.WriteString(footer.String())
	return b.String()
}
