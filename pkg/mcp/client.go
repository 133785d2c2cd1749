package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client errors.
var (
	ErrNotInitialized     = errors.New("client not initialized")
	ErrAlreadyInitialized = errors.New("client already initialized")
)

// UnsupportedVersionError is a server answering initialize with a
// protocol version we do not speak.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return "unsupported protocol version: " + e.Version
}

// Client drives one MCP server: connect, initialize, discover tools,
// call them, shut down.
type Client struct {
	transport   *Transport
	definition  ServerDef
	serverInfo  *ServerInfo
	tools       []ToolInfo
	initialized bool
	timeoutMS   uint64
}

// Connect spawns the server process. Initialize must be called before
// tool operations.
func Connect(def ServerDef, serverName string, debug bool) (*Client, error) {
	transport, err := SpawnTransport(def, serverName, debug)
	if err != nil {
		return nil, fmt.Errorf("transport error: %w", err)
	}
	return &Client{
		transport:  transport,
		definition: def,
		timeoutMS:  def.Timeout(),
	}, nil
}

// ConnectAndInitialize spawns, initializes, and lists tools in one
// step.
func ConnectAndInitialize(def ServerDef, serverName string, debug bool) (*Client, error) {
	client, err := Connect(def, serverName, debug)
	if err != nil {
		return nil, err
	}
	if _, err := client.Initialize(); err != nil {
		return nil, err
	}
	if _, err := client.ListTools(); err != nil {
		return nil, err
	}
	return client, nil
}

// Initialize performs the MCP handshake and sends the initialized
// notification. The server must answer with our protocol version.
func (c *Client) Initialize() (*ServerInfo, error) {
	if c.initialized {
		return nil, ErrAlreadyInitialized
	}

	params, err := json.Marshal(DefaultInitializeParams())
	if err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	result, err := c.transport.Request("initialize", params, c.timeoutMS)
	if err != nil {
		return nil, fmt.Errorf("transport error: %w", err)
	}

	var initResult InitializeResult
	if err := json.Unmarshal(result, &initResult); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if initResult.ProtocolVersion != ProtocolVersion {
		return nil, &UnsupportedVersionError{Version: initResult.ProtocolVersion}
	}

	c.serverInfo = &initResult.ServerInfo
	c.initialized = true

	if err := c.transport.SendNotification(NewNotification("notifications/initialized", nil)); err != nil {
		return nil, fmt.Errorf("transport error: %w", err)
	}
	return c.serverInfo, nil
}

// ListTools asks the server for its tools and caches the result.
func (c *Client) ListTools() ([]ToolInfo, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	result, err := c.transport.Request("tools/list", nil, c.timeoutMS)
	if err != nil {
		return nil, fmt.Errorf("transport error: %w", err)
	}
	var listResult ToolsListResult
	if err := json.Unmarshal(result, &listResult); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	c.tools = listResult.Tools
	return c.tools, nil
}

// Tools returns the cached tool list.
func (c *Client) Tools() []ToolInfo {
	return c.tools
}

// HasTool reports whether the cached list contains the tool.
func (c *Client) HasTool(name string) bool {
	for _, t := range c.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// CallTool invokes a tool with the client's default timeout.
func (c *Client) CallTool(name string, arguments json.RawMessage) (ToolCallResult, error) {
	return c.CallToolWithTimeout(name, arguments, c.timeoutMS)
}

// CallToolWithTimeout invokes a tool with a custom timeout.
func (c *Client) CallToolWithTimeout(name string, arguments json.RawMessage, timeoutMS uint64) (ToolCallResult, error) {
	if !c.initialized {
		return ToolCallResult{}, ErrNotInitialized
	}
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: arguments})
	if err != nil {
		return ToolCallResult{}, fmt.Errorf("invalid response: %w", err)
	}
	result, err := c.transport.Request("tools/call", params, timeoutMS)
	if err != nil {
		return ToolCallResult{}, fmt.Errorf("transport error: %w", err)
	}
	var callResult ToolCallResult
	if err := json.Unmarshal(result, &callResult); err != nil {
		return ToolCallResult{}, fmt.Errorf("invalid response: %w", err)
	}
	return callResult, nil
}

// Shutdown terminates the server process. The client cannot be used
// afterward.
func (c *Client) Shutdown() error {
	return c.transport.Shutdown()
}

// IsInitialized reports whether the handshake completed.
func (c *Client) IsInitialized() bool {
	return c.initialized
}

// IsRunning reports whether the server process is alive.
func (c *Client) IsRunning() bool {
	return c.transport.IsRunning()
}

// ServerInfo returns the identity from the handshake, if any.
func (c *Client) ServerInfo() *ServerInfo {
	return c.serverInfo
}
