package tui

import (
	"fmt"
	"strings"

	"claudeless/pkg/scenario"
)

// wrapResponseParagraph word-wraps response text for display behind a
// "⏺ " prefix, with a 2-space continuation indent.
func wrapResponseParagraph(text string, terminalWidth int) string {
	budget := terminalWidth - 2
	if budget <= 0 || len([]rune(text)) <= budget {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))
		switch {
		case lineLen == 0:
			b.WriteString(word)
			lineLen = wordLen
		case lineLen+1+wordLen <= budget:
			b.WriteByte(' ')
			b.WriteString(word)
			lineLen += 1 + wordLen
		default:
			b.WriteString("\n  ")
			b.WriteString(word)
			lineLen = wordLen
		}
	}
	return b.String()
}

// joinDisplayParts joins tool and response blocks. The first part is
// bare since the display layer adds its own ⏺ prefix; later parts carry
// their own.
func joinDisplayParts(parts []string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteString("\n\n⏺ ")
		}
		b.WriteString(part)
	}
	return b.String()
}

// formatCompletedToolDisplay renders a finished tool call with its result.
func formatCompletedToolDisplay(call *scenario.ToolCallSpec, resultText *string) string {
	input := call.InputMap()
	inputStr := func(key string) string {
		s, _ := input[key].(string)
		return s
	}

	switch call.Tool {
	case "Write":
		display := fmt.Sprintf("Write(%s)", inputStr("file_path"))
		if resultText != nil {
			display += "\n  ⎿  " + *resultText
			if content, ok := input["content"].(string); ok {
				for i, line := range strings.Split(content, "\n") {
					display += fmt.Sprintf("\n      %d %s", i+1, line)
				}
			}
		}
		return display
	case "Read":
		if resultText == nil {
			return "Read (ctrl+o to expand)"
		}
		if strings.HasSuffix(*resultText, "…") {
			return fmt.Sprintf("Reading %s (ctrl+o to expand)", *resultText)
		}
		return fmt.Sprintf("Read %s (ctrl+o to expand)", *resultText)
	case "Bash":
		display := fmt.Sprintf("Bash(%s)", inputStr("command"))
		if resultText != nil {
			display += "\n  ⎿  " + *resultText
		}
		return display
	default:
		if resultText != nil {
			return *resultText
		}
		return call.Tool
	}
}

// formatToolCallDisplay renders a tool call shown above its permission
// dialog, before any result exists.
func formatToolCallDisplay(call *scenario.ToolCallSpec) string {
	input := call.InputMap()
	inputStr := func(key string) string {
		s, _ := input[key].(string)
		return s
	}

	switch call.Tool {
	case "Bash":
		return fmt.Sprintf("Bash(%s)\n  ⎿  Running…", inputStr("command"))
	case "Edit":
		return fmt.Sprintf("Update(%s)", inputStr("file_path"))
	case "Write":
		return fmt.Sprintf("Write(%s)", inputStr("file_path"))
	default:
		return call.Tool
	}
}

// toolCallToPermissionDialog builds the approval dialog for a tool call.
// Unknown tools (MCP tools and the like) have no dialog and return nil.
func toolCallToPermissionDialog(call *scenario.ToolCallSpec) *permissionDialog {
	input := call.InputMap()
	inputStr := func(key string) (string, bool) {
		s, ok := input[key].(string)
		return s, ok
	}

	switch call.Tool {
	case "Bash":
		command, ok := inputStr("command")
		if !ok {
			return nil
		}
		description, _ := inputStr("description")
		return &permissionDialog{isBash: true, command: command, description: description}

	case "Write":
		filePath, ok := inputStr("file_path")
		if !ok {
			return nil
		}
		content, _ := inputStr("content")
		return &permissionDialog{
			isWrite:      true,
			writePath:    filePath,
			contentLines: strings.Split(content, "\n"),
		}

	case "Edit":
		filePath, ok := inputStr("file_path")
		if !ok {
			return nil
		}
		oldString, _ := inputStr("old_string")
		newString, _ := inputStr("new_string")

		var diff []diffLine
		lineNum := 1
		for _, line := range splitLines(oldString) {
			diff = append(diff, diffLine{number: lineNum, prefix: "-", content: line})
			lineNum++
		}
		if oldString != "" && !strings.HasSuffix(oldString, "\n") {
			diff = append(diff, diffLine{content: "No newline at end of file"})
		}
		addedStart := lineNum
		added := splitLines(newString)
		for i, line := range added {
			diff = append(diff, diffLine{number: addedStart + i, prefix: "+", content: line})
		}
		if newString != "" && !strings.HasSuffix(newString, "\n") {
			diff = append(diff, diffLine{content: "No newline at end of file"})
		}

		return &permissionDialog{isEdit: true, editPath: filePath, diff: diff}
	}
	return nil
}

// splitLines mirrors line iteration that ignores a trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
