package mcp

import (
	"encoding/json"
	"strings"

	"claudeless/internal/appversion"
)

// ProtocolVersion is the MCP protocol revision this client speaks.
// Initialization fails when the server answers with a different one.
const ProtocolVersion = "2025-11-25"

// ClientInfo identifies this client during initialization.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DefaultClientInfo returns the identity sent in the initialize call.
func DefaultClientInfo() ClientInfo {
	return ClientInfo{Name: "claudeless", Version: appversion.String()}
}

// ClientCapabilities advertises optional capabilities. None yet.
type ClientCapabilities struct {
	Experimental json.RawMessage `json:"experimental,omitempty"`
}

// InitializeParams is the initialize request body.
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ClientInfo         `json:"clientInfo"`
}

// DefaultInitializeParams builds the standard initialize request.
func DefaultInitializeParams() InitializeParams {
	return InitializeParams{
		ProtocolVersion: ProtocolVersion,
		ClientInfo:      DefaultClientInfo(),
	}
}

// ServerInfo is the server identity from the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ToolsCapability describes the server's tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is the capability block of the initialize
// response.
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// InitializeResult is the initialize response body.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ToolInfo is one entry of a tools/list response.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolDef converts the wire shape into the internal definition.
func (t ToolInfo) ToolDef(serverName string) ToolDef {
	return ToolDef{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
		ServerName:  serverName,
	}
}

// ToolsListResult is the tools/list response body.
type ToolsListResult struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolCallParams is the tools/call request body.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ContentBlock is one block of a tools/call response. Type selects
// which fields are meaningful: "text" carries Text, "image" carries
// Data and MimeType, "resource" carries URI.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// AsText returns the text content when this is a text block.
func (b ContentBlock) AsText() (string, bool) {
	if b.Type == "text" {
		return b.Text, true
	}
	return "", false
}

// ToolCallResult is the tools/call response body.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ToolResult is the internal shape handed to the tool executor.
type ToolResult struct {
	Content json.RawMessage `json:"content"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
}

// ToolResult flattens the wire result: errors collect the text blocks
// into one message, successes keep the content as JSON.
func (r ToolCallResult) ToolResult() ToolResult {
	if r.IsError {
		var parts []string
		for _, block := range r.Content {
			if text, ok := block.AsText(); ok {
				parts = append(parts, text)
			}
		}
		return ToolResult{Content: json.RawMessage("null"), Error: strings.Join(parts, "\n")}
	}
	content, err := json.Marshal(r.Content)
	if err != nil {
		content = json.RawMessage("null")
	}
	return ToolResult{Content: content, Success: true}
}
