package tui

import (
	"fmt"
	"strings"
)

// modelChoice is one row in the meta+p model picker.
type modelChoice int

const (
	modelDefault modelChoice = iota
	modelOpus
	modelHaiku
)

var modelChoices = []modelChoice{modelDefault, modelOpus, modelHaiku}

func (c modelChoice) ModelID() string {
	switch c {
	case modelOpus:
		return "claude-opus-4-5-20251101"
	case modelHaiku:
		return "claude-haiku-4-5-20251101"
	default:
		return "claude-sonnet-4-20250514"
	}
}

func (c modelChoice) DisplayName() string {
	switch c {
	case modelOpus:
		return "Opus 4.5"
	case modelHaiku:
		return "Haiku 4.5"
	default:
		return "Sonnet 4.5"
	}
}

func (c modelChoice) Description() string {
	switch c {
	case modelOpus:
		return "Most capable for complex work"
	case modelHaiku:
		return "Fastest for quick answers"
	default:
		return "Best for everyday tasks"
	}
}

// modelChoiceFromID maps a model id back to its row by name substring.
func modelChoiceFromID(id string) modelChoice {
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "haiku"):
		return modelHaiku
	case strings.Contains(lower, "opus"):
		return modelOpus
	default:
		return modelDefault
	}
}

// modelPickerDialog tracks picker selection against the active model.
type modelPickerDialog struct {
	selected modelChoice
	current  modelChoice
}

func newModelPickerDialog(currentModelID string) *modelPickerDialog {
	current := modelChoiceFromID(currentModelID)
	return &modelPickerDialog{selected: current, current: current}
}

func (d *modelPickerDialog) MoveUp() {
	d.selected = (d.selected + 2) % 3
}

func (d *modelPickerDialog) MoveDown() {
	d.selected = (d.selected + 1) % 3
}

func renderModelPickerDialog(d *modelPickerDialog, _ int) string {
	var b strings.Builder
	b.WriteString(" Select model\n")
	b.WriteString(" Switch between Claude models. Applies to this session and future Claude Code\n")
	b.WriteString(" sessions. For other/previous model names, specify with --model.\n\n")

	for i, choice := range modelChoices {
		cursor := " "
		if choice == d.selected {
			cursor = "❯"
		}
		label := map[modelChoice]string{
			modelDefault: "Default (recommended)",
			modelOpus:    "Opus",
			modelHaiku:   "Haiku",
		}[choice]
		if choice == d.current {
			label += " ✔"
		}
		desc := fmt.Sprintf("%s · %s", choice.DisplayName(), choice.Description())
		b.WriteString(fmt.Sprintf(" %s %d. %-23s%s\n", cursor, i+1, label, desc))
	}

	b.WriteString("\n Enter to confirm · Esc to exit")
	return b.String()
}
