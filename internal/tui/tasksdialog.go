package tui

import (
	"fmt"
	"strings"
)

// taskStatus is a background task's run state.
type taskStatus int

const (
	taskRunning taskStatus = iota
	taskCompleted
	taskFailed
)

// taskInfo describes one background task row.
type taskInfo struct {
	id          string
	description string
	status      taskStatus
}

// tasksDialog is the ctrl+t / /tasks background-tasks overlay.
type tasksDialog struct {
	tasks  []taskInfo
	scroll scrollState
}

func newTasksDialog(tasks []taskInfo) *tasksDialog {
	d := &tasksDialog{tasks: tasks, scroll: newScrollState(5)}
	d.scroll.SetTotal(len(tasks))
	return d
}

func (d *tasksDialog) IsEmpty() bool        { return len(d.tasks) == 0 }
func (d *tasksDialog) MoveSelectionUp()     { d.scroll.SelectPrev() }
func (d *tasksDialog) MoveSelectionDown()   { d.scroll.SelectNext() }
func (d *tasksDialog) SelectedIndex() int   { return d.scroll.selectedIndex }

func renderTasksDialog(d *tasksDialog, width int) string {
	inner := width - 2
	if inner < 0 {
		inner = 0
	}
	top := "╭" + strings.Repeat("─", inner) + "╮"
	bottom := "╰" + strings.Repeat("─", inner) + "╯"
	pad := func(s string) string {
		fill := inner - len([]rune(s))
		if fill < 0 {
			fill = 0
		}
		return "│" + s + strings.Repeat(" ", fill) + "│"
	}

	content := "No tasks currently running"
	if !d.IsEmpty() {
		var rows []string
		for i, task := range d.tasks {
			indicator := "  "
			if i == d.SelectedIndex() {
				indicator = "❯ "
			}
			rows = append(rows, indicator+task.description)
		}
		content = strings.Join(rows, "\n")
	}

	lines := []string{top, pad(" Background tasks")}
	for _, row := range strings.Split(content, "\n") {
		lines = append(lines, pad(fmt.Sprintf(" %s", row)))
	}
	lines = append(lines, bottom, "  ↑/↓ to select · Enter to view · Esc to close")
	return strings.Join(lines, "\n")
}
