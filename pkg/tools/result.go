// Package tools executes the tool calls a scenario plans for a response.
//
// Executors form a small decorator stack: a mode-selected backend (mock,
// disabled, or the builtin live executors) optionally wrapped by permission
// checking, with MCP routing layered on top when servers are configured.
package tools

import (
	"encoding/json"
	"fmt"
)

// Content block kinds inside a tool result.
const (
	ContentText  = "text"
	ContentImage = "image"
)

// Content is one block of a tool result.
type Content struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Data      string `json:"data,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// TextContent builds a text block.
func TextContent(text string) Content {
	return Content{Type: ContentText, Text: text}
}

// ImageContent builds a base64 image block.
func ImageContent(data, mediaType string) Content {
	return Content{Type: ContentImage, Data: data, MediaType: mediaType}
}

// Result is the outcome of one tool execution.
type Result struct {
	// ToolUseID is the tool use this result corresponds to.
	ToolUseID string `json:"tool_use_id"`

	// IsError marks a failed execution.
	IsError bool `json:"is_error"`

	// Content holds the result blocks.
	Content []Content `json:"content"`

	// ToolUseResult carries tool-specific data for session recording,
	// such as oldTodos/newTodos for TodoWrite.
	ToolUseResult json.RawMessage `json:"tool_use_result,omitempty"`

	// NeedsPrompt marks a tool that wants an interactive permission
	// prompt before executing. Never serialized.
	NeedsPrompt bool `json:"-"`
}

// Success builds a successful text result.
func Success(toolUseID, text string) Result {
	return Result{
		ToolUseID: toolUseID,
		IsError:   false,
		Content:   []Content{TextContent(text)},
	}
}

// Error builds an error result.
func Error(toolUseID, message string) Result {
	return Result{
		ToolUseID: toolUseID,
		IsError:   true,
		Content:   []Content{TextContent(message)},
	}
}

// SuccessWithResult builds a successful text result carrying
// tool-specific data for session recording.
func SuccessWithResult(toolUseID, text string, toolUseResult json.RawMessage) Result {
	r := Success(toolUseID, text)
	r.ToolUseResult = toolUseResult
	return r
}

// NeedsPrompt builds a result asking for an interactive permission prompt.
func NeedsPrompt(toolUseID string) Result {
	return Result{ToolUseID: toolUseID, Content: []Content{}, NeedsPrompt: true}
}

// NoMockResult builds the error returned when mock mode has no
// configured result for a tool.
func NoMockResult(toolUseID, toolName string) Result {
	return Error(toolUseID, fmt.Sprintf("No mock result configured for tool '%s'", toolName))
}

// Disabled builds the error returned when tool execution is off.
func Disabled(toolUseID string) Result {
	return Error(toolUseID, "Tool execution is disabled")
}

// PermissionDenied builds the error returned when a permission check fails.
func PermissionDenied(toolUseID, reason string) Result {
	return Error(toolUseID, fmt.Sprintf("Permission denied: %s", reason))
}

// Text returns the text content when the result is a single text block.
func (r *Result) Text() (string, bool) {
	if len(r.Content) == 1 && r.Content[0].Type == ContentText {
		return r.Content[0].Text, true
	}
	return "", false
}
