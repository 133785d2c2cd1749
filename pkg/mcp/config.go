// Package mcp implements a Model Context Protocol client: config
// parsing, a JSON-RPC 2.0 stdio transport, and a manager that spawns
// servers and routes tool calls to them.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultTimeoutMS is the per-request timeout when a server definition
// does not set one.
const DefaultTimeoutMS = 30000

// Config is the root of an MCP configuration file.
type Config struct {
	MCPServers map[string]ServerDef `json:"mcpServers"`
}

// ServerDef describes how to spawn one MCP server.
type ServerDef struct {
	Command   string            `json:"command"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Cwd       string            `json:"cwd,omitempty"`
	TimeoutMS uint64            `json:"timeoutMs,omitempty"`
}

// Timeout returns the request timeout, falling back to the default.
func (d ServerDef) Timeout() uint64 {
	if d.TimeoutMS > 0 {
		return d.TimeoutMS
	}
	return DefaultTimeoutMS
}

// ToolDef is a tool discovered on a server, tagged with its origin.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
	ServerName  string          `json:"server_name"`
}

// QualifiedPrefix marks tool names routed to MCP servers.
const QualifiedPrefix = "mcp__"

// QualifiedName returns the mcp__<server>__<tool> form of the tool.
func (t ToolDef) QualifiedName() string {
	return QualifiedPrefix + t.ServerName + "__" + t.Name
}

// ParseQualifiedName splits a mcp__<server>__<tool> name. Tool names
// may themselves contain double underscores, so only the first
// separator after the server name counts.
func ParseQualifiedName(name string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(name, QualifiedPrefix)
	if !found {
		return "", "", false
	}
	idx := strings.Index(rest, "__")
	if idx <= 0 || idx+2 >= len(rest) {
		return "", "", false
	}
	return rest[:idx], rest[idx+2:], true
}

// ParseConfig parses MCP configuration from JSON content.
func ParseConfig(content string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("Failed to parse MCP config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads an MCP configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to read MCP config from %s: %w", path, err)
	}
	return ParseConfig(string(data))
}

// LoadConfigInput accepts either inline JSON or a file path, the way
// the --mcp-config flag does.
func LoadConfigInput(input string) (*Config, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return ParseConfig(trimmed)
	}
	return LoadConfig(input)
}

// MergeConfigs combines configs in order, later definitions winning.
func MergeConfigs(configs ...*Config) *Config {
	merged := &Config{MCPServers: map[string]ServerDef{}}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		for name, def := range cfg.MCPServers {
			merged.MCPServers[name] = def
		}
	}
	return merged
}

// ServerNames lists the configured server names.
func (c *Config) ServerNames() []string {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	return names
}

// HasServers reports whether any server is configured.
func (c *Config) HasServers() bool {
	return len(c.MCPServers) > 0
}
