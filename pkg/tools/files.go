package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claudeless/pkg/scenario"
)

// readTool reads file contents.
type readTool struct{}

func (readTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	path, ok := extractFilePath(call.InputMap())
	if !ok {
		return Error(toolUseID, "Missing 'file_path' or 'path' field in Read tool input")
	}
	resolved := ctx.resolvePath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Error(toolUseID, fmt.Sprintf("Failed to read file '%s': %s", resolved, err))
	}
	return Success(toolUseID, string(data))
}

func (readTool) toolName() string { return NameRead }

// writeTool writes file contents, creating parent directories.
type writeTool struct{}

func (writeTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	input := call.InputMap()
	path, ok := extractFilePath(input)
	if !ok {
		return Error(toolUseID, "Missing 'file_path' or 'path' field in Write tool input")
	}
	content, ok := extractStr(input, "content")
	if !ok {
		return Error(toolUseID, "Missing 'content' field in Write tool input")
	}

	resolved := ctx.resolvePath(path)
	if parent := filepath.Dir(resolved); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return Error(toolUseID, fmt.Sprintf("Failed to create parent directories: %s", err))
		}
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return Error(toolUseID, fmt.Sprintf("Failed to write file '%s': %s", resolved, err))
	}
	return Success(toolUseID, fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), resolved))
}

func (writeTool) toolName() string { return NameWrite }

// editTool replaces a string in a file.
type editTool struct{}

func (editTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	input := call.InputMap()
	path, ok := extractFilePath(input)
	if !ok {
		return Error(toolUseID, "Missing 'file_path' or 'path' field in Edit tool input")
	}
	oldString, ok := extractStr(input, "old_string")
	if !ok {
		return Error(toolUseID, "Missing 'old_string' field in Edit tool input")
	}
	newString, ok := extractStr(input, "new_string")
	if !ok {
		return Error(toolUseID, "Missing 'new_string' field in Edit tool input")
	}

	resolved := ctx.resolvePath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Error(toolUseID, fmt.Sprintf("Failed to read file '%s': %s", resolved, err))
	}
	content := string(data)

	occurrences := strings.Count(content, oldString)
	if occurrences == 0 {
		return Error(toolUseID, fmt.Sprintf(
			"old_string not found in file '%s'. Make sure it matches exactly.", resolved))
	}

	replaceAll := extractBool(input, "replace_all", false)
	if !replaceAll && occurrences > 1 {
		return Error(toolUseID, fmt.Sprintf(
			"old_string is not unique in file '%s'. Found %d occurrences. "+
				"Use replace_all=true to replace all, or provide more context.",
			resolved, occurrences))
	}

	count := 1
	var newContent string
	if replaceAll {
		count = occurrences
		newContent = strings.ReplaceAll(content, oldString, newString)
	} else {
		newContent = strings.Replace(content, oldString, newString, 1)
	}

	if err := os.WriteFile(resolved, []byte(newContent), 0o644); err != nil {
		return Error(toolUseID, fmt.Sprintf("Failed to write file '%s': %s", resolved, err))
	}
	return Success(toolUseID, fmt.Sprintf(
		"Successfully edited %s: replaced %d occurrence(s)", resolved, count))
}

func (editTool) toolName() string { return NameEdit }
