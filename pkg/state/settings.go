package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// PermissionSettings is the permissions block of settings.json.
type PermissionSettings struct {
	Allow                 []string `json:"allow,omitempty"`
	Deny                  []string `json:"deny,omitempty"`
	AdditionalDirectories []string `json:"additionalDirectories,omitempty"`
}

// MCPServerSettings is an MCP server definition in settings.json.
// Parsed but never spawned from here.
type MCPServerSettings struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

// HookMatcher selects which event (and optionally which sub-event) a
// hook definition fires on.
type HookMatcher struct {
	Event   string `json:"event"`
	Matcher string `json:"matcher,omitempty"`
}

// HookCommand is one command entry under a hook definition.
type HookCommand struct {
	CommandType string `json:"command_type"`
	Command     string `json:"command"`
	Timeout     uint64 `json:"timeout,omitempty"`
}

// HookDef binds a matcher to one or more commands.
type HookDef struct {
	Matcher HookMatcher   `json:"matcher"`
	Hooks   []HookCommand `json:"hooks"`
}

// Settings is the settings.json schema. Unknown fields are preserved in
// Extra so future keys survive a load-merge-save cycle.
type Settings struct {
	Permissions PermissionSettings           `json:"permissions,omitempty"`
	MCPServers  map[string]MCPServerSettings `json:"mcpServers,omitempty"`
	Env         map[string]string            `json:"env,omitempty"`
	Hooks       []HookDef                    `json:"hooks,omitempty"`
	Extra       map[string]json.RawMessage   `json:"-"`
}

// settingsKnownKeys are the typed fields, everything else goes to Extra.
var settingsKnownKeys = map[string]bool{
	"permissions": true,
	"mcpServers":  true,
	"env":         true,
	"hooks":       true,
}

// UnmarshalJSON splits known fields from the passthrough set.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain struct {
		Permissions PermissionSettings           `json:"permissions"`
		MCPServers  map[string]MCPServerSettings `json:"mcpServers"`
		Env         map[string]string            `json:"env"`
		Hooks       []HookDef                    `json:"hooks"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Permissions = p.Permissions
	s.MCPServers = p.MCPServers
	s.Env = p.Env
	s.Hooks = p.Hooks
	s.Extra = nil
	for k, v := range raw {
		if settingsKnownKeys[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]json.RawMessage{}
		}
		s.Extra[k] = v
	}
	return nil
}

// MarshalJSON re-inlines the passthrough fields.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	for k, v := range s.Extra {
		out[k] = v
	}
	if len(s.Permissions.Allow) > 0 || len(s.Permissions.Deny) > 0 || len(s.Permissions.AdditionalDirectories) > 0 {
		out["permissions"] = s.Permissions
	}
	if len(s.MCPServers) > 0 {
		out["mcpServers"] = s.MCPServers
	}
	if len(s.Env) > 0 {
		out["env"] = s.Env
	}
	if len(s.Hooks) > 0 {
		out["hooks"] = s.Hooks
	}
	return json.Marshal(out)
}

// LoadSettings reads one settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return &s, nil
}

// ParseSettingsInput accepts either a settings file path or an inline
// JSON object, the same forms the --settings flag takes.
func ParseSettingsInput(input string) (*Settings, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var s Settings
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return nil, fmt.Errorf("parse inline settings: %w", err)
		}
		return &s, nil
	}
	return LoadSettings(input)
}

// Merge layers another settings file on top of this one. Non-empty
// arrays replace, maps merge per key.
func (s *Settings) Merge(other *Settings) {
	if len(other.Permissions.Allow) > 0 {
		s.Permissions.Allow = other.Permissions.Allow
	}
	if len(other.Permissions.Deny) > 0 {
		s.Permissions.Deny = other.Permissions.Deny
	}
	if len(other.Permissions.AdditionalDirectories) > 0 {
		s.Permissions.AdditionalDirectories = other.Permissions.AdditionalDirectories
	}
	for name, cfg := range other.MCPServers {
		if s.MCPServers == nil {
			s.MCPServers = map[string]MCPServerSettings{}
		}
		s.MCPServers[name] = cfg
	}
	for k, v := range other.Env {
		if s.Env == nil {
			s.Env = map[string]string{}
		}
		s.Env[k] = v
	}
	if len(other.Hooks) > 0 {
		s.Hooks = other.Hooks
	}
	for k, v := range other.Extra {
		if s.Extra == nil {
			s.Extra = map[string]json.RawMessage{}
		}
		s.Extra[k] = v
	}
}

// SettingsSource names where a settings file comes from.
type SettingsSource string

const (
	SourceUser    SettingsSource = "user"
	SourceProject SettingsSource = "project"
	SourceLocal   SettingsSource = "local"
)

// AllSources returns the sources in precedence order, lowest first.
func AllSources() []SettingsSource {
	return []SettingsSource{SourceUser, SourceProject, SourceLocal}
}

// ParseSettingsSource accepts the CLI spellings for a source name.
func ParseSettingsSource(s string) (SettingsSource, error) {
	switch s {
	case "user", "global":
		return SourceUser, nil
	case "project":
		return SourceProject, nil
	case "local":
		return SourceLocal, nil
	}
	return "", fmt.Errorf("unknown setting source: %s", s)
}

// SettingsPaths holds the candidate settings locations for a run.
type SettingsPaths struct {
	User    string
	Project string
	Local   string
}

// ResolveSettingsPaths computes the standard search locations: the
// state dir's settings.json plus the working directory's .claude
// overrides.
func ResolveSettingsPaths(stateRoot, workingDir string) SettingsPaths {
	return SettingsPaths{
		User:    filepath.Join(stateRoot, "settings.json"),
		Project: filepath.Join(workingDir, ".claude", "settings.json"),
		Local:   filepath.Join(workingDir, ".claude", "settings.local.json"),
	}
}

func (p SettingsPaths) path(source SettingsSource) string {
	switch source {
	case SourceUser:
		return p.User
	case SourceProject:
		return p.Project
	case SourceLocal:
		return p.Local
	}
	return ""
}

// LoadMerged loads and merges the selected sources in precedence order.
// A nil source list means all sources. Missing files are skipped;
// invalid files log a warning and are skipped.
func (p SettingsPaths) LoadMerged(sources []SettingsSource) *Settings {
	if sources == nil {
		sources = AllSources()
	}
	merged := &Settings{}
	for _, src := range AllSources() {
		if !sourceSelected(sources, src) {
			continue
		}
		path := p.path(src)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		s, err := LoadSettings(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable settings file")
			continue
		}
		merged.Merge(s)
	}
	return merged
}

// LoadWithOverrides loads the merged sources, then layers each
// override (a file path or inline JSON) on top in the order given.
// Unparseable overrides log a warning and are skipped.
func (p SettingsPaths) LoadWithOverrides(sources []SettingsSource, overrides []string) *Settings {
	merged := p.LoadMerged(sources)
	for _, input := range overrides {
		s, err := ParseSettingsInput(input)
		if err != nil {
			log.Warn().Err(err).Msg("skipping settings override")
			continue
		}
		merged.Merge(s)
	}
	return merged
}

// Existing returns the settings files that are present on disk, in
// precedence order.
func (p SettingsPaths) Existing() []string {
	var out []string
	for _, src := range AllSources() {
		if path := p.path(src); path != "" {
			if _, err := os.Stat(path); err == nil {
				out = append(out, path)
			}
		}
	}
	return out
}

func sourceSelected(sources []SettingsSource, src SettingsSource) bool {
	for _, s := range sources {
		if s == src {
			return true
		}
	}
	return false
}
