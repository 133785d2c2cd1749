package tui

import "strings"

// Separator characters used across the interface.
const (
	separatorChar      = "─"
	compactSepChar     = "═"
	sectionDividerChar = "╌"
)

// makeSeparator builds a full-width horizontal rule.
func makeSeparator(width int) string {
	return strings.Repeat(separatorChar, width)
}

// makeCompactSeparator centers " text " in a double-rule line.
func makeCompactSeparator(text string, width int) string {
	padded := " " + text + " "
	textLen := len([]rune(padded))
	if width <= textLen {
		return padded
	}
	remaining := width - textLen
	left := remaining / 2
	right := remaining - left
	return strings.Repeat(compactSepChar, left) + padded + strings.Repeat(compactSepChar, right)
}

// makeSectionDivider builds a full-width light-dash rule.
func makeSectionDivider(width int) string {
	return strings.Repeat(sectionDividerChar, width)
}
