package state

import (
	"encoding/json"
	"fmt"
	"os"
)

// Todo statuses in wire form.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// TodoItem matches the format real Claude Code keeps under todos/,
// one file per session named {sessionId}-agent-{sessionId}.json.
type TodoItem struct {
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm"`
}

// NewTodo builds a pending item. When no active form is given, one is
// derived from the content the same way the real CLI displays it.
func NewTodo(content, activeForm string) TodoItem {
	if activeForm == "" {
		activeForm = content + "..."
	}
	return TodoItem{Content: content, Status: TodoPending, ActiveForm: activeForm}
}

// SaveTodos writes a todo list as a pretty-printed JSON array.
func SaveTodos(path string, items []TodoItem) error {
	if items == nil {
		items = []TodoItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write todos: %w", err)
	}
	return nil
}

// LoadTodos reads a todo file.
func LoadTodos(path string) ([]TodoItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read todos: %w", err)
	}
	var items []TodoItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse todos: %w", err)
	}
	return items, nil
}
