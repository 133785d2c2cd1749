package tui

import "fmt"

// shortcutColumns holds the "?" panel content, column by column.
func shortcutColumns() [3][]string {
	return [3][]string{
		{
			"! for bash mode",
			"/ for commands",
			"@ for file paths",
			"& for background",
		},
		{
			"double tap esc to clear input",
			"shift + tab to auto-accept edits",
			"ctrl + o for verbose output",
			"ctrl + t to show todos",
			"backslash (\\) + return (⏎) for",
			"newline",
		},
		{
			"ctrl + _ to undo",
			"ctrl + z to suspend",
			"cmd + v to paste images",
			"meta + p to switch model",
			"ctrl + s to stash prompt",
		},
	}
}

// shortcutPanelLines lays the columns out with fixed widths: 2-space
// indent, 21-char left column, 31-char center column.
func shortcutPanelLines() []string {
	const leftWidth, centerWidth = 21, 31

	cols := shortcutColumns()
	rows := 0
	for _, c := range cols {
		if len(c) > rows {
			rows = len(c)
		}
	}

	lines := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		var left, center, right string
		if i < len(cols[0]) {
			left = cols[0][i]
		}
		if i < len(cols[1]) {
			center = cols[1][i]
		}
		if i < len(cols[2]) {
			right = cols[2][i]
		}
		lines = append(lines, fmt.Sprintf("  %-*s%-*s%s", leftWidth, left, centerWidth, center, right))
	}
	return lines
}
