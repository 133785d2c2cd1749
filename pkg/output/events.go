package output

import "encoding/json"

// Envelope line types shared by stream-json and the session JSONL.
const (
	LineSystem         = "system"
	LineUser           = "user"
	LineAssistant      = "assistant"
	LineResult         = "result"
	LineQueueOperation = "queue-operation"
)

// Event subtypes.
const (
	SubtypeInit         = "init"
	SubtypeMessageStart = "message_start"
	SubtypeMessageDelta = "message_delta"
	SubtypeMessageStop  = "message_stop"
	SubtypeError        = "error"
)

// MCP server statuses reported in the init event.
const (
	MCPConnected    = "connected"
	MCPFailed       = "failed"
	MCPDisconnected = "disconnected"
)

// MCPServerInfo is one server entry in the system init event.
type MCPServerInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ConnectedServer builds a connected entry.
func ConnectedServer(name string) MCPServerInfo {
	return MCPServerInfo{Name: name, Status: MCPConnected}
}

// FailedServer builds a failed entry.
func FailedServer(name string) MCPServerInfo {
	return MCPServerInfo{Name: name, Status: MCPFailed}
}

// DisconnectedServer builds a disconnected entry.
func DisconnectedServer(name string) MCPServerInfo {
	return MCPServerInfo{Name: name, Status: MCPDisconnected}
}

// SystemInitEvent is the first stream-json line.
type SystemInitEvent struct {
	Type       string          `json:"type"`
	Subtype    string          `json:"subtype"`
	SessionID  string          `json:"session_id"`
	Tools      []string        `json:"tools"`
	MCPServers []MCPServerInfo `json:"mcp_servers"`
}

// NewSystemInit builds the init event without MCP servers.
func NewSystemInit(sessionID string, tools []string) SystemInitEvent {
	return NewSystemInitWithMCP(sessionID, tools, []MCPServerInfo{})
}

// NewSystemInitWithMCP builds the init event with MCP server entries.
func NewSystemInitWithMCP(sessionID string, tools []string, servers []MCPServerInfo) SystemInitEvent {
	if tools == nil {
		tools = []string{}
	}
	if servers == nil {
		servers = []MCPServerInfo{}
	}
	return SystemInitEvent{
		Type:       LineSystem,
		Subtype:    SubtypeInit,
		SessionID:  sessionID,
		Tools:      tools,
		MCPServers: servers,
	}
}

// CondensedMessage is the message body of the condensed assistant event.
type CondensedMessage struct {
	ID           string          `json:"id"`
	Model        string          `json:"model"`
	Role         string          `json:"role"`
	Type         string          `json:"type"`
	Content      json.RawMessage `json:"content"`
	StopReason   *string         `json:"stop_reason"`
	StopSequence *string         `json:"stop_sequence"`
	Usage        json.RawMessage `json:"usage"`
}

// CondensedAssistantEvent is the second stream-json line: one event
// holding the full assistant message, no subtype.
type CondensedAssistantEvent struct {
	Type      string           `json:"type"`
	Message   CondensedMessage `json:"message"`
	SessionID string           `json:"session_id"`
	UUID      string           `json:"uuid"`
}

// NewCondensedAssistant wraps a message in the assistant envelope.
func NewCondensedAssistant(message CondensedMessage, sessionID string) CondensedAssistantEvent {
	return CondensedAssistantEvent{
		Type:      LineAssistant,
		Message:   message,
		SessionID: sessionID,
		UUID:      uuidStub(),
	}
}
