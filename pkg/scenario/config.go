// Package scenario loads and compiles the declarative scenario files that
// drive the simulator's responses. A scenario pairs prompt patterns with
// scripted responses, tool-call plans, or injected failures, plus identity
// and timing overrides for the process.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults the simulator reports when a scenario leaves them unset.
const (
	DefaultModel         = "claude-opus-4-5-20251101"
	DefaultClaudeVersion = "2.1.12"
	DefaultUserName      = "Alfred"
	DefaultPlaceholder   = `Try "write a test for scenario.rs"`
	DefaultProvider      = "Claude Max"
)

// Config is the parsed (not yet compiled) scenario document.
type Config struct {
	Name string `json:"name,omitempty"`

	Identity
	Environment
	Timing

	DefaultResponse *ResponseSpec `json:"default_response,omitempty"`
	Responses       []Rule        `json:"responses,omitempty"`
	ToolExecution   *ToolExecutionConfig `json:"tool_execution,omitempty"`
}

// Identity carries the fields the simulator reports about itself.
type Identity struct {
	UserName              *string  `json:"user_name,omitempty"`
	DefaultModel          *string  `json:"default_model,omitempty"`
	ClaudeVersion         *string  `json:"claude_version,omitempty"`
	SessionID             *string  `json:"session_id,omitempty"`
	Placeholder           *string  `json:"placeholder,omitempty"`
	Provider              *string  `json:"provider,omitempty"`
	ShowWelcomeBack       bool     `json:"show_welcome_back,omitempty"`
	WelcomeBackRightPanel []string `json:"welcome_back_right_panel,omitempty"`
}

// Environment carries process-environment overrides.
type Environment struct {
	WorkingDirectory *string `json:"working_directory,omitempty"`
	ProjectPath      *string `json:"project_path,omitempty"`
	LaunchTimestamp  *string `json:"launch_timestamp,omitempty"`
	PermissionMode   *string `json:"permission_mode,omitempty"`
	Trusted          *bool   `json:"trusted,omitempty"`
	LoggedIn         *bool   `json:"logged_in,omitempty"`
}

// IsTrusted reports the trust flag, defaulting to true.
func (e *Environment) IsTrusted() bool { return e.Trusted == nil || *e.Trusted }

// IsLoggedIn reports the login flag, defaulting to true.
func (e *Environment) IsLoggedIn() bool { return e.LoggedIn == nil || *e.LoggedIn }

// Timing carries scenario timeout overrides.
type Timing struct {
	Timeouts *TimeoutConfig `json:"timeouts,omitempty"`
}

// Rule is one pattern → response/failure entry.
type Rule struct {
	Pattern    PatternSpec   `json:"pattern"`
	Response   *ResponseSpec `json:"response,omitempty"`
	Failure    *FailureSpec  `json:"failure,omitempty"`
	MaxMatches int           `json:"max_matches,omitempty"`
	Turns      []ConversationTurn `json:"turns,omitempty"`
}

// ConversationTurn is one expected follow-up within a Rule's turn sequence.
type ConversationTurn struct {
	Expect   PatternSpec   `json:"expect"`
	Response *ResponseSpec `json:"response,omitempty"`
	Failure  *FailureSpec  `json:"failure,omitempty"`
}

// ResponseSpec is either a plain string or a detailed response.
type ResponseSpec struct {
	Text      string         `json:"text"`
	ToolCalls []ToolCallSpec `json:"tool_calls,omitempty"`
	Usage     *UsageSpec     `json:"usage,omitempty"`
	DelayMS   int64          `json:"delay_ms,omitempty"`
}

// SimpleResponse wraps a bare string as a ResponseSpec.
func SimpleResponse(text string) *ResponseSpec { return &ResponseSpec{Text: text} }

// UnmarshalJSON accepts both the simple-string and the detailed object form.
func (r *ResponseSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ResponseSpec{Text: s}
		return nil
	}
	type detailed ResponseSpec
	var d detailed
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*r = ResponseSpec(d)
	return nil
}

// ToolCallSpec plans one tool invocation inside a response.
type ToolCallSpec struct {
	Tool   string          `json:"tool"`
	Input  json.RawMessage `json:"input,omitempty"`
	Result *string         `json:"result,omitempty"`
}

// InputMap decodes the planned input as a generic object.
func (t *ToolCallSpec) InputMap() map[string]any {
	if len(t.Input) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(t.Input, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// UsageSpec annotates a response with token counts.
type UsageSpec struct {
	InputTokens  uint32 `json:"input_tokens"`
	OutputTokens uint32 `json:"output_tokens"`
}

// Tool execution modes.
const (
	ToolModeLive     = "live"
	ToolModeMock     = "mock"
	ToolModeDisabled = "disabled"
)

// ToolExecutionConfig selects the executor backend and per-tool overrides.
type ToolExecutionConfig struct {
	Mode          string                `json:"mode,omitempty"`
	Tools         map[string]ToolConfig `json:"tools,omitempty"`
	SandboxRoot   string                `json:"sandbox_root,omitempty"`
	AllowRealBash bool                  `json:"allow_real_bash,omitempty"`
}

// EffectiveMode returns the configured mode, defaulting to live.
func (c *ToolExecutionConfig) EffectiveMode() string {
	if c == nil || c.Mode == "" {
		return ToolModeLive
	}
	return c.Mode
}

// ToolConfig overrides behavior for a single tool.
type ToolConfig struct {
	AutoApprove bool     `json:"auto_approve,omitempty"`
	Result      *string  `json:"result,omitempty"`
	Error       *string  `json:"error,omitempty"`
	Answers     []string `json:"answers,omitempty"`
}

// permissionModes are the values Environment.PermissionMode accepts.
var permissionModes = map[string]bool{
	"default":            true,
	"plan":               true,
	"bypass-permissions": true,
	"accept-edits":       true,
	"dont-ask":           true,
	"delegate":           true,
}

// Load reads a scenario file. The format follows the extension: .json is
// JSON, .yaml/.yml is YAML, anything else is TOML. $file references are
// resolved relative to the scenario's directory before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path), filepath.Dir(path))
}

// Parse decodes scenario content. ext selects the format; dir anchors $file
// references (empty disables them).
func Parse(data []byte, ext, dir string) (*Config, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse scenario JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse scenario YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse scenario TOML: %w", err)
		}
	}

	resolved, err := resolveFileRefs(raw, dir)
	if err != nil {
		return nil, err
	}

	// Normalize through JSON so the struct tags apply uniformly to all
	// three source formats.
	buf, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("normalize scenario: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the identity and rule constraints.
func (c *Config) Validate() error {
	if c.SessionID != nil {
		if _, err := uuid.Parse(*c.SessionID); err != nil {
			return fmt.Errorf("scenario session_id %q is not a valid UUID", *c.SessionID)
		}
	}
	if c.LaunchTimestamp != nil {
		if _, err := time.Parse(time.RFC3339, *c.LaunchTimestamp); err != nil {
			return fmt.Errorf("scenario launch_timestamp %q is not RFC 3339", *c.LaunchTimestamp)
		}
	}
	if c.PermissionMode != nil && !permissionModes[*c.PermissionMode] {
		return fmt.Errorf("scenario permission_mode %q is not recognized", *c.PermissionMode)
	}
	for i := range c.Responses {
		r := &c.Responses[i]
		if r.Response == nil && r.Failure == nil {
			return fmt.Errorf("scenario rule %d has neither response nor failure", i)
		}
	}
	return nil
}

// resolveFileRefs walks the decoded document replacing {"$file": "path"}
// objects with the referenced file's content. Files ending in .json are
// parsed as JSON values; everything else becomes a string. Resolution is
// recursive so a referenced JSON file may itself contain references.
func resolveFileRefs(v any, dir string) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		if ref, ok := fileRef(node); ok {
			if dir == "" {
				return nil, fmt.Errorf("$file reference %q outside a file-backed scenario", ref)
			}
			return loadFileRef(ref, dir)
		}
		out := make(map[string]any, len(node))
		for k, val := range node {
			resolved, err := resolveFileRefs(val, dir)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(node))
		for i, val := range node {
			resolved, err := resolveFileRefs(val, dir)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func fileRef(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	ref, ok := m["$file"].(string)
	return ref, ok
}

func loadFileRef(ref, dir string) (any, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, ref)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolve $file %s: %w", ref, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse $file %s: %w", ref, err)
		}
		return resolveFileRefs(v, filepath.Dir(path))
	}
	return string(data), nil
}
