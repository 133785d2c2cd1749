package runtime

import (
	"os"
	"time"

	"github.com/google/uuid"

	"claudeless/pkg/permission"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

// Context is the merged view of scenario configuration and CLI
// arguments the rest of the process reads from. Precedence is CLI over
// scenario over built-in default, except for the model, where the CLI
// value only wins when it differs from the default (the flag always
// carries one).
type Context struct {
	Model            string
	SessionID        uuid.UUID
	WorkingDirectory string
	ProjectPath      string
	LaunchTimestamp  time.Time
	Trusted          bool
	ClaudeVersion    string
	UserName         string
	PermissionMode   permission.Mode

	// Settings is the effective merged settings.json view.
	Settings *state.Settings
}

// NewContext merges a scenario config (may be nil) with CLI arguments.
func NewContext(cfg *scenario.Config, cli *CLI, settings *state.Settings) Context {
	if settings == nil {
		settings = &state.Settings{}
	}

	model := cli.Model
	if cli.Model == scenario.DefaultModel && cfg != nil && cfg.DefaultModel != nil {
		model = *cfg.DefaultModel
	}

	sessionID := uuid.New()
	if cli.SessionID != nil {
		if id, err := uuid.Parse(*cli.SessionID); err == nil {
			sessionID = id
		}
	} else if cfg != nil && cfg.SessionID != nil {
		if id, err := uuid.Parse(*cfg.SessionID); err == nil {
			sessionID = id
		}
	}

	workingDir := ""
	switch {
	case cli.Cwd != nil:
		workingDir = *cli.Cwd
	case cfg != nil && cfg.WorkingDirectory != nil:
		workingDir = *cfg.WorkingDirectory
	default:
		workingDir, _ = os.Getwd()
	}

	projectPath := workingDir
	if cfg != nil && cfg.ProjectPath != nil {
		projectPath = *cfg.ProjectPath
	}

	launch := time.Now()
	if cfg != nil && cfg.LaunchTimestamp != nil {
		if t, err := time.Parse(time.RFC3339, *cfg.LaunchTimestamp); err == nil {
			launch = t
		}
	}

	trusted := true
	if cfg != nil {
		trusted = cfg.IsTrusted()
	}

	claudeVersion := scenario.DefaultClaudeVersion
	if cfg != nil && cfg.ClaudeVersion != nil {
		claudeVersion = *cfg.ClaudeVersion
	}

	userName := scenario.DefaultUserName
	if cfg != nil && cfg.UserName != nil {
		userName = *cfg.UserName
	}

	mode := cli.PermissionMode
	if cfg != nil && cfg.PermissionMode != nil {
		if m, err := permission.ParseMode(*cfg.PermissionMode); err == nil {
			mode = m
		}
	}

	return Context{
		Model:            model,
		SessionID:        sessionID,
		WorkingDirectory: workingDir,
		ProjectPath:      projectPath,
		LaunchTimestamp:  launch,
		Trusted:          trusted,
		ClaudeVersion:    claudeVersion,
		UserName:         userName,
		PermissionMode:   mode,
		Settings:         settings,
	}
}

// Checker builds a permission checker from the context's mode, the
// bypass flag pair, and the settings allow/deny patterns.
func (c *Context) Checker(bypass permission.Bypass) *permission.Checker {
	return permission.NewChecker(c.PermissionMode, bypass).
		WithPatterns(permission.PatternsFromSettings(c.Settings.Permissions))
}

// CheckerWithOverrides additionally applies per-tool scenario overrides.
func (c *Context) CheckerWithOverrides(bypass permission.Bypass, tools map[string]scenario.ToolConfig) *permission.Checker {
	return c.Checker(bypass).WithScenarioOverrides(tools)
}
