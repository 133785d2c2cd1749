package tools

import (
	"encoding/json"
	"fmt"

	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

const todoWriteMessage = "Todos have been modified successfully. " +
	"Ensure that you continue to use the todo list to track your progress. " +
	"Please proceed with the current tasks if applicable"

// executeTodoWrite parses todo items from the tool input and writes
// them to the session state directory. The caller fills in ToolUseID.
func executeTodoWrite(call *scenario.ToolCallSpec, w *state.Writer) Result {
	var todos []state.TodoItem
	if arr, ok := call.InputMap()["todos"].([]any); ok {
		for _, v := range arr {
			if item, ok := parseTodoItem(v); ok {
				todos = append(todos, item)
			}
		}
	}

	newTodos := make([]map[string]string, 0, len(todos))
	for _, t := range todos {
		active := t.ActiveForm
		if active == "" {
			active = t.Content
		}
		newTodos = append(newTodos, map[string]string{
			"content":    t.Content,
			"status":     t.Status,
			"activeForm": active,
		})
	}
	toolUseResult, _ := json.Marshal(map[string]any{
		"oldTodos": []any{},
		"newTodos": newTodos,
	})

	if err := w.WriteTodos(todos); err != nil {
		return Error("", fmt.Sprintf("Failed to write todos: %s", err))
	}
	return SuccessWithResult("", todoWriteMessage, toolUseResult)
}

func parseTodoItem(v any) (state.TodoItem, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return state.TodoItem{}, false
	}
	content, ok := obj["content"].(string)
	if !ok {
		return state.TodoItem{}, false
	}
	status, ok := obj["status"].(string)
	if !ok {
		return state.TodoItem{}, false
	}
	switch status {
	case state.TodoPending, state.TodoInProgress, state.TodoCompleted:
	default:
		status = state.TodoPending
	}
	active, _ := obj["activeForm"].(string)
	return state.TodoItem{Content: content, Status: status, ActiveForm: active}, true
}

// executeExitPlanMode saves the plan content as a markdown file in the
// state directory. The caller fills in ToolUseID.
func executeExitPlanMode(call *scenario.ToolCallSpec, w *state.Writer) Result {
	input := call.InputMap()
	content := "# Plan\n\nNo content provided."
	for _, key := range []string{"plan_content", "planContent", "content"} {
		if s, ok := extractStr(input, key); ok {
			content = s
			break
		}
	}

	name, err := w.CreatePlan(content)
	if err != nil {
		return Error("", fmt.Sprintf("Failed to save plan: %s", err))
	}
	return Success("", fmt.Sprintf("Plan saved as %s.md", name))
}
