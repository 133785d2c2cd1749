package state

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Line type and role discriminators used throughout the JSONL format.
const (
	LineUser           = "user"
	LineAssistant      = "assistant"
	LineResult         = "result"
	LineQueueOperation = "queue-operation"

	RoleUser      = "user"
	RoleAssistant = "assistant"

	userTypeExternal = "external"
	messageTypeValue = "message"
)

// Envelope holds the fields shared by every message line.
type Envelope struct {
	Type        string  `json:"type"`
	UUID        string  `json:"uuid"`
	Timestamp   string  `json:"timestamp"`
	SessionID   string  `json:"sessionId"`
	Cwd         string  `json:"cwd"`
	Version     string  `json:"version"`
	GitBranch   string  `json:"gitBranch"`
	ParentUUID  *string `json:"parentUuid"`
	IsSidechain bool    `json:"isSidechain"`
	UserType    string  `json:"userType"`
}

// UserMessage is the message body of a plain user line.
type UserMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessageLine is a user prompt in the transcript.
type UserMessageLine struct {
	Envelope
	Message UserMessage `json:"message"`
}

// ToolResultContent is the tool_result block inside a user line.
type ToolResultContent struct {
	ToolUseID string `json:"tool_use_id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

// ToolResultUserMessage wraps tool results in user-message form.
type ToolResultUserMessage struct {
	Role    string              `json:"role"`
	Content []ToolResultContent `json:"content"`
}

// ToolResultMessageLine is a user line carrying a tool result.
type ToolResultMessageLine struct {
	Envelope
	Message                 ToolResultUserMessage `json:"message"`
	ToolUseResult           json.RawMessage       `json:"toolUseResult"`
	SourceToolAssistantUUID string                `json:"sourceToolAssistantUUID"`
}

// ContentBlock is one element of assistant message content. Exactly one
// of the optional field groups is populated depending on Type.
type ContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ToolUseBlock builds a tool_use content block.
func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: "tool_use", ID: id, Name: name, Input: input}
}

// CacheCreation is the cache token breakdown inside usage.
type CacheCreation struct {
	Ephemeral5mInputTokens int `json:"ephemeral_5m_input_tokens"`
	Ephemeral1hInputTokens int `json:"ephemeral_1h_input_tokens"`
}

// Usage is the token accounting attached to assistant messages.
type Usage struct {
	InputTokens              int           `json:"input_tokens"`
	CacheCreationInputTokens int           `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int           `json:"cache_read_input_tokens"`
	CacheCreation            CacheCreation `json:"cache_creation"`
	OutputTokens             int           `json:"output_tokens"`
	ServiceTier              string        `json:"service_tier"`
}

// NewUsage builds a usage record with the standard service tier.
func NewUsage(inputTokens, outputTokens int) Usage {
	return Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		ServiceTier:  "standard",
	}
}

// AssistantMessage is the API-shaped message body on assistant lines.
type AssistantMessage struct {
	Model        string         `json:"model"`
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	StopReason   *string        `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// AssistantMessageLine is an assistant response in the transcript.
type AssistantMessageLine struct {
	Envelope
	Message   AssistantMessage `json:"message"`
	RequestID string           `json:"requestId"`
}

// QueueOperationLine is the first line of a print-mode session.
type QueueOperationLine struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
}

// ResultLine is a standalone tool-result record for log extraction.
type ResultLine struct {
	Type      string `json:"type"`
	ToolUseID string `json:"toolUseId"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ErrorLine records an injected failure in result-wrapper form.
type ErrorLine struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"isError"`
	SessionID  string  `json:"sessionId"`
	Error      string  `json:"error"`
	ErrorType  *string `json:"errorType,omitempty"`
	RetryAfter *int64  `json:"retryAfter,omitempty"`
	DurationMS int64   `json:"durationMs"`
	Timestamp  string  `json:"timestamp"`
}

func appendJSONLine(path string, v any) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session line: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append session line: %w", err)
	}
	return nil
}

// AppendQueueOperation writes the queue-operation line for print mode.
func AppendQueueOperation(path, sessionID, operation string, ts time.Time) error {
	return appendJSONLine(path, QueueOperationLine{
		Type:      LineQueueOperation,
		Operation: operation,
		Timestamp: ts.Format(time.RFC3339),
		SessionID: sessionID,
	})
}

// AppendResult writes a type:"result" record so log extraction can find
// tool results without parsing user-message content.
func AppendResult(path, toolUseID, content string, ts time.Time) error {
	return appendJSONLine(path, ResultLine{
		Type:      LineResult,
		ToolUseID: toolUseID,
		Content:   content,
		Timestamp: ts.Format(time.RFC3339),
	})
}

// AppendError writes an error line with subtype "error".
func AppendError(path, sessionID, errText string, errType *string, retryAfter *int64, durationMS int64, ts time.Time) error {
	return appendJSONLine(path, ErrorLine{
		Type:       LineResult,
		Subtype:    "error",
		IsError:    true,
		SessionID:  sessionID,
		Error:      errText,
		ErrorType:  errType,
		RetryAfter: retryAfter,
		DurationMS: durationMS,
		Timestamp:  ts.Format(time.RFC3339),
	})
}

func envelope(lineType, uuid string, parent *string, sessionID, cwd, version, gitBranch string, ts time.Time) Envelope {
	return Envelope{
		Type:        lineType,
		UUID:        uuid,
		Timestamp:   ts.Format(time.RFC3339),
		SessionID:   sessionID,
		Cwd:         cwd,
		Version:     version,
		GitBranch:   gitBranch,
		ParentUUID:  parent,
		IsSidechain: false,
		UserType:    userTypeExternal,
	}
}
