package output

import (
	"encoding/json"
	"fmt"
	"io"

	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
	"claudeless/pkg/tools"
)

// Format selects the print-mode encoding.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatStreamJSON Format = "stream-json"
)

// ParseFormat validates an --output-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatStreamJSON:
		return Format(s), nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("invalid output format: %s", s)
}

// JSONResponse is the API-shaped message used by the verbose event stream.
type JSONResponse struct {
	ID         string               `json:"id"`
	Model      string               `json:"model"`
	Type       string               `json:"type"`
	Role       string               `json:"role"`
	Content    []state.ContentBlock `json:"content"`
	StopReason string               `json:"stop_reason"`
	Usage      TokenCounts          `json:"usage"`
}

// ToolResultBlock is a tool result rendered as a stream-json line.
type ToolResultBlock struct {
	Type      string          `json:"type"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   []tools.Content `json:"content"`
}

// ToolResultBlockFrom converts an execution result.
func ToolResultBlockFrom(result *tools.Result) ToolResultBlock {
	return ToolResultBlock{
		Type:      "tool_result",
		ToolUseID: result.ToolUseID,
		IsError:   result.IsError,
		Content:   result.Content,
	}
}

// Writer encodes responses in the configured format.
type Writer struct {
	w      io.Writer
	format Format
	model  string
}

// NewWriter creates a writer for the given format and model name.
func NewWriter(w io.Writer, format Format, model string) *Writer {
	return &Writer{w: w, format: format, model: model}
}

// Format returns the configured format.
func (o *Writer) Format() Format { return o.format }

// WriteResponse emits a response in the configured format: plain text,
// one API-shaped JSON message, or the verbose delta event stream.
func (o *Writer) WriteResponse(response *scenario.ResponseSpec, toolCalls []scenario.ToolCallSpec) error {
	switch o.format {
	case FormatJSON:
		return o.writeJSON(response, toolCalls)
	case FormatStreamJSON:
		return o.writeStreamJSON(response, toolCalls)
	default:
		return o.writeText(response.Text)
	}
}

func (o *Writer) writeText(text string) error {
	_, err := fmt.Fprintln(o.w, text)
	return err
}

func (o *Writer) writeJSON(response *scenario.ResponseSpec, toolCalls []scenario.ToolCallSpec) error {
	content := []state.ContentBlock{state.TextBlock(response.Text)}
	for _, tc := range toolCalls {
		content = append(content, state.ToolUseBlock("toolu_"+uuidStub(), tc.Tool, tc.Input))
	}
	usage := responseUsage(response)
	return o.writeJSONLine(JSONResponse{
		ID:         "msg_" + uuidStub(),
		Model:      o.model,
		Type:       "message",
		Role:       "assistant",
		Content:    content,
		StopReason: "end_turn",
		Usage:      usage,
	})
}

// streamEvent is one line of the verbose delta stream. Fields beyond
// Type are populated per event kind.
type streamEvent struct {
	Type         string              `json:"type"`
	Message      *streamMessage      `json:"message,omitempty"`
	Index        *uint32             `json:"index,omitempty"`
	ContentBlock *state.ContentBlock `json:"content_block,omitempty"`
	Delta        json.RawMessage     `json:"delta,omitempty"`
	Usage        *TokenCounts        `json:"usage,omitempty"`
}

type streamMessage struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Type  string `json:"type"`
	Role  string `json:"role"`
}

func idx(i uint32) *uint32 { return &i }

func rawJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func (o *Writer) writeStreamJSON(response *scenario.ResponseSpec, toolCalls []scenario.ToolCallSpec) error {
	msgID := "msg_" + uuidStub()

	events := []streamEvent{
		{Type: "message_start", Message: &streamMessage{
			ID: msgID, Model: o.model, Type: "message", Role: "assistant",
		}},
	}

	textStart := state.TextBlock("")
	events = append(events, streamEvent{Type: "content_block_start", Index: idx(0), ContentBlock: &textStart})

	const chunkSize = 20
	text := response.Text
	for start := 0; start < len(text); start += chunkSize {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		events = append(events, streamEvent{
			Type:  "content_block_delta",
			Index: idx(0),
			Delta: rawJSON(map[string]string{"type": "text_delta", "text": text[start:end]}),
		})
	}
	events = append(events, streamEvent{Type: "content_block_stop", Index: idx(0)})

	for i, tc := range toolCalls {
		blockIdx := uint32(i + 1)
		toolStart := state.ToolUseBlock("toolu_"+uuidStub(), tc.Tool, json.RawMessage("{}"))
		events = append(events, streamEvent{Type: "content_block_start", Index: idx(blockIdx), ContentBlock: &toolStart})

		input := tc.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		events = append(events, streamEvent{
			Type:  "content_block_delta",
			Index: idx(blockIdx),
			Delta: rawJSON(map[string]string{"type": "input_json_delta", "partial_json": string(input)}),
		})
		events = append(events, streamEvent{Type: "content_block_stop", Index: idx(blockIdx)})
	}

	usage := responseUsage(response)
	events = append(events,
		streamEvent{
			Type:  "message_delta",
			Delta: rawJSON(map[string]string{"stop_reason": "end_turn"}),
			Usage: &usage,
		},
		streamEvent{Type: "message_stop"},
	)

	for _, ev := range events {
		if err := o.writeJSONLine(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult emits a result wrapper line.
func (o *Writer) WriteResult(result *ResultOutput) error {
	return o.writeJSONLine(result)
}

// WriteRealResponse emits the condensed format matching real CLI
// output: text stays text, json is a result wrapper, stream-json is
// the three-event init/assistant/result sequence.
func (o *Writer) WriteRealResponse(response *scenario.ResponseSpec, sessionID string, toolNames []string) error {
	return o.WriteRealResponseWithMCP(response, sessionID, toolNames, nil)
}

// WriteRealResponseWithMCP is WriteRealResponse with MCP server
// entries in the init event.
func (o *Writer) WriteRealResponseWithMCP(response *scenario.ResponseSpec, sessionID string, toolNames []string, mcpServers []MCPServerInfo) error {
	switch o.format {
	case FormatJSON:
		usage := responseUsage(response)
		result := SuccessResultWithUsage(response.Text, sessionID, 1000,
			usage.InputTokens, usage.OutputTokens, o.model)
		return o.WriteResult(&result)
	case FormatStreamJSON:
		return o.writeRealStreamJSON(response, sessionID, toolNames, mcpServers)
	default:
		return o.writeText(response.Text)
	}
}

func (o *Writer) writeRealStreamJSON(response *scenario.ResponseSpec, sessionID string, toolNames []string, mcpServers []MCPServerInfo) error {
	if err := o.writeJSONLine(NewSystemInitWithMCP(sessionID, toolNames, mcpServers)); err != nil {
		return err
	}

	usage := responseUsage(response)
	message := CondensedMessage{
		ID:      "msg_" + uuidStub(),
		Model:   o.model,
		Role:    "assistant",
		Type:    "message",
		Content: rawJSON([]map[string]string{{"type": "text", "text": response.Text}}),
		Usage:   rawJSON(usage),
	}
	if err := o.writeJSONLine(NewCondensedAssistant(message, sessionID)); err != nil {
		return err
	}

	result := SuccessResultWithUsage(response.Text, sessionID, 1000,
		usage.InputTokens, usage.OutputTokens, o.model)
	return o.WriteResult(&result)
}

// WriteToolResult renders a tool execution result: plain text in text
// mode with an "Error: " prefix for failures, a tool_result line in
// the JSON formats.
func (o *Writer) WriteToolResult(result *tools.Result) error {
	if o.format == FormatText {
		text, ok := result.Text()
		if !ok {
			return nil
		}
		if result.IsError {
			_, err := fmt.Fprintf(o.w, "Error: %s\n", text)
			return err
		}
		_, err := fmt.Fprintln(o.w, text)
		return err
	}
	block := ToolResultBlockFrom(result)
	return o.writeJSONLine(block)
}

func (o *Writer) writeJSONLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.w, string(data))
	return err
}

// responseUsage returns configured usage or the 100-input estimate.
func responseUsage(response *scenario.ResponseSpec) TokenCounts {
	if response.Usage != nil {
		return TokenCounts{
			InputTokens:  response.Usage.InputTokens,
			OutputTokens: response.Usage.OutputTokens,
		}
	}
	return TokenCounts{InputTokens: 100, OutputTokens: EstimateTokens(response.Text)}
}
