// Package runtime assembles the simulator's subsystems into a running
// process: it merges scenario configuration with CLI arguments, builds
// the tool executor and state writer, and drives the turn loop for
// print mode. The TUI reuses the same Runtime for its agent loop.
package runtime

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"claudeless/pkg/output"
	"claudeless/pkg/permission"
	"claudeless/pkg/state"
)

// CLI is the parsed command line. The cobra layer fills this in; the
// runtime and TUI consume it. Pointer fields distinguish "not given"
// from an explicit empty value.
type CLI struct {
	// Prompt is the positional prompt argument.
	Prompt *string

	// Print selects non-interactive single-response mode.
	Print bool

	// Model is the requested model, defaulting to the simulator's model.
	Model string

	SystemPrompt    *string
	AllowedTools    []string
	DisallowedTools []string
	InputFile       *string
	Cwd             *string

	// SettingSources restricts which settings files load. Nil means all.
	SettingSources []state.SettingsSource

	// Settings holds --settings values: file paths or inline JSON.
	Settings []string

	// Output options.
	OutputFormat           output.Format
	Verbose                bool
	Debug                  bool
	DebugFilter            string
	IncludePartialMessages bool

	// Session options.
	ContinueConversation bool
	Resume               *string
	SessionID            *string
	NoSessionPersistence bool

	// Permission options.
	PermissionMode                  permission.Mode
	AllowDangerouslySkipPermissions bool
	DangerouslySkipPermissions      bool

	// MCP options.
	MCPConfigs      []string
	StrictMCPConfig bool
	MCPDebug        bool

	// Simulator options.
	Scenario      *string
	Capture       *string
	Failure       *string
	ToolMode      *string
	ClaudeVersion *string
}

// NewCLI returns a CLI with the flag defaults applied.
func NewCLI() *CLI {
	return &CLI{
		Model:          output.DefaultModel,
		OutputFormat:   output.FormatText,
		PermissionMode: permission.ModeDefault,
	}
}

// Validate checks flag combinations the parser cannot express.
func (c *CLI) Validate() error {
	if c.NoSessionPersistence && !c.Print {
		return errors.New("--no-session-persistence can only be used with --print mode")
	}
	if c.SessionID != nil {
		if _, err := uuid.Parse(*c.SessionID); err != nil {
			return errors.New("Invalid session ID. Must be a valid UUID.")
		}
	}
	if c.Print && c.OutputFormat == output.FormatStreamJSON && !c.Verbose {
		return errors.New("When using --print, --output-format=stream-json requires --verbose")
	}
	return nil
}

// Bypass builds the permission bypass handler from the flag pair.
func (c *CLI) Bypass() permission.Bypass {
	return permission.NewBypass(c.AllowDangerouslySkipPermissions, c.DangerouslySkipPermissions)
}

// ShouldUseTUI reports whether the interactive interface should run.
func (c *CLI) ShouldUseTUI() bool {
	return !c.Print && isatty.IsTerminal(os.Stdin.Fd())
}
