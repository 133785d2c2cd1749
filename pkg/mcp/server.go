package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ServerStatus tracks a server's lifecycle.
type ServerStatus string

const (
	StatusUninitialized ServerStatus = "uninitialized"
	StatusRunning       ServerStatus = "running"
	StatusFailed        ServerStatus = "failed"
	StatusDisconnected  ServerStatus = "disconnected"
)

// ToolNotFoundError is a tool call for a tool no server provides.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return "tool not found: " + e.Name
}

// Server is one configured MCP server and its discovered tools.
type Server struct {
	Name       string
	Definition ServerDef
	Tools      []ToolDef
	Status     ServerStatus

	// FailureReason holds the spawn error when Status is failed.
	FailureReason string

	mu     sync.Mutex
	client *Client
}

// NewServer creates a server from its definition, unspawned.
func NewServer(name string, def ServerDef) *Server {
	return &Server{Name: name, Definition: def, Status: StatusUninitialized}
}

// Spawn starts the server process, runs the handshake, and discovers
// tools.
func (s *Server) Spawn(debug bool) error {
	if s.Definition.Command == "" {
		return errors.New("transport error: failed to spawn process: No command specified")
	}
	client, err := ConnectAndInitialize(s.Definition, s.Name, debug)
	if err != nil {
		return err
	}
	s.Tools = s.Tools[:0]
	for _, t := range client.Tools() {
		s.Tools = append(s.Tools, t.ToolDef(s.Name))
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.Status = StatusRunning
	return nil
}

// Connected reports whether a live client exists.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// CallTool runs a tool on this server.
func (s *Server) CallTool(name string, arguments json.RawMessage) (ToolResult, error) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return ToolResult{}, ErrNotInitialized
	}
	result, err := client.CallTool(name, arguments)
	if err != nil {
		return ToolResult{}, err
	}
	return result.ToolResult(), nil
}

// Shutdown terminates the server connection. After this the status is
// disconnected and tool calls fail.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()
	s.Status = StatusDisconnected
	if client != nil {
		return client.Shutdown()
	}
	return nil
}

// RegisterTool adds a tool to this server's list. Used by simulated
// servers that never spawn a process.
func (s *Server) RegisterTool(tool ToolDef) {
	s.Tools = append(s.Tools, tool)
}

// Start marks the server running without spawning a process.
func (s *Server) Start() {
	s.Status = StatusRunning
}

// Fail marks the server failed with a reason.
func (s *Server) Fail(reason string) {
	s.Status = StatusFailed
	s.FailureReason = reason
}

// Disconnect marks the server disconnected.
func (s *Server) Disconnect() {
	s.Status = StatusDisconnected
}

// Running reports whether the server status is running.
func (s *Server) Running() bool {
	return s.Status == StatusRunning
}

// ToolNames lists the tools this server provides.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.Tools))
	for _, t := range s.Tools {
		names = append(names, t.Name)
	}
	return names
}

// Manager owns the configured servers and routes tool calls to the
// one that provides each tool.
type Manager struct {
	servers       map[string]*Server
	toolServerMap map[string]string
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		servers:       map[string]*Server{},
		toolServerMap: map[string]string{},
	}
}

// ManagerFromConfig builds servers from config without spawning them.
func ManagerFromConfig(config *Config) *Manager {
	m := NewManager()
	for name, def := range config.MCPServers {
		m.servers[name] = NewServer(name, def)
	}
	return m
}

// InitResult is the outcome of spawning one server.
type InitResult struct {
	Name string
	Err  error
}

// Initialize spawns every server. Failures are recorded on the server
// and reported; the server stays in the manager.
func (m *Manager) Initialize(debug bool) []InitResult {
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]InitResult, 0, len(names))
	for _, name := range names {
		server := m.servers[name]
		err := server.Spawn(debug)
		if err != nil {
			server.Fail(err.Error())
		} else {
			for _, tool := range server.Tools {
				m.toolServerMap[tool.Name] = name
			}
		}
		results = append(results, InitResult{Name: name, Err: err})
	}
	return results
}

// CallTool routes a tool call to the providing server.
func (m *Manager) CallTool(toolName string, arguments json.RawMessage) (ToolResult, error) {
	serverName, ok := m.toolServerMap[toolName]
	if !ok {
		return ToolResult{}, &ToolNotFoundError{Name: toolName}
	}
	server, ok := m.servers[serverName]
	if !ok {
		return ToolResult{}, &ToolNotFoundError{Name: fmt.Sprintf("server '%s' not found", serverName)}
	}
	return server.CallTool(toolName, arguments)
}

// Shutdown terminates every server connection.
func (m *Manager) Shutdown() {
	for _, server := range m.servers {
		_ = server.Shutdown()
	}
}

// AddServer registers a server with the manager.
func (m *Manager) AddServer(server *Server) {
	m.servers[server.Name] = server
}

// GetServer looks a server up by name.
func (m *Manager) GetServer(name string) (*Server, bool) {
	s, ok := m.servers[name]
	return s, ok
}

// RegisterTool attaches a tool to a server and routes calls to it.
func (m *Manager) RegisterTool(serverName string, tool ToolDef) {
	m.toolServerMap[tool.Name] = serverName
	if server, ok := m.servers[serverName]; ok {
		server.RegisterTool(tool)
	}
}

// Tools lists every tool from running servers.
func (m *Manager) Tools() []ToolDef {
	var tools []ToolDef
	for _, server := range m.servers {
		if server.Running() {
			tools = append(tools, server.Tools...)
		}
	}
	return tools
}

// Servers lists every server, sorted by name for stable output.
func (m *Manager) Servers() []*Server {
	names := m.ServerNames()
	servers := make([]*Server, 0, len(names))
	for _, name := range names {
		servers = append(servers, m.servers[name])
	}
	return servers
}

// ToolNames lists tool names from running servers.
func (m *Manager) ToolNames() []string {
	tools := m.Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// ServerNames lists every server name, sorted.
func (m *Manager) ServerNames() []string {
	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTool reports whether any server provides the tool.
func (m *Manager) HasTool(name string) bool {
	_, ok := m.toolServerMap[name]
	return ok
}

// ServerForTool returns the server providing the tool.
func (m *Manager) ServerForTool(toolName string) (*Server, bool) {
	serverName, ok := m.toolServerMap[toolName]
	if !ok {
		return nil, false
	}
	server, ok := m.servers[serverName]
	return server, ok
}

// HasServers reports whether any server is registered.
func (m *Manager) HasServers() bool {
	return len(m.servers) > 0
}

// ServerCount returns the number of registered servers.
func (m *Manager) ServerCount() int {
	return len(m.servers)
}

// RunningServerCount returns the number of running servers.
func (m *Manager) RunningServerCount() int {
	count := 0
	for _, server := range m.servers {
		if server.Running() {
			count++
		}
	}
	return count
}
