package tui

import (
	"claudeless/pkg/permission"
	"claudeless/pkg/runtime"
	"claudeless/pkg/scenario"
)

// appMode is the top-level interaction state.
type appMode int

const (
	modeSetup appMode = iota
	modeInput
	modeResponding
	modePermission
	modeThinking
	modeTrust
	modeBypassConfirm
	modeThinkingToggle
	modeTasksDialog
	modeModelPicker
	modeExportDialog
	modeHelpDialog
	modeHooksDialog
	modeMemoryDialog
	modeElicitation
	modePlanApproval
)

// ExitReason explains why the interactive session ended.
type ExitReason int

const (
	ExitNone ExitReason = iota
	ExitUserQuit
	ExitInterrupted
	ExitCompleted
	ExitError
)

// exitHint is the double-tap affordance shown in the status bar.
type exitHint int

const (
	hintNone exitHint = iota
	hintCtrlC
	hintCtrlD
	hintEscape
)

// statusInfo is the session status surfaced by /status and the header.
type statusInfo struct {
	model        string
	inputTokens  uint64
	outputTokens uint64
	sessionID    string
}

// trustPromptState is the first-run "do you trust this folder" dialog.
type trustPromptState struct {
	workingDirectory string
	// selectedYes starts on the affirmative option.
	selectedYes bool
}

// bypassConfirmState is the bypass-permissions warning dialog.
// selectedYes defaults to false so Enter exits.
type bypassConfirmState struct {
	selectedYes bool
}

// permissionRequest pairs a permission dialog with the pending tool
// call it will resolve.
type permissionRequest struct {
	dialog permissionDialog
	// toolUseID is the session-log id of the pending call, empty when
	// the call was never recorded.
	toolUseID string
}

// Config carries everything the TUI needs that the runtime resolved at
// startup.
type Config struct {
	Trusted                  bool
	LoggedIn                 bool
	UserName                 string
	Model                    string
	WorkingDirectory         string
	PermissionMode           permission.Mode
	AllowBypassPermissions   bool
	BypassConfirmationNeeded bool
	Timeouts                 scenario.ResolvedTimeouts

	// ClaudeVersion switches the header branding to the real product
	// name when set.
	ClaudeVersion *string

	IsTTY         bool
	InitialPrompt *string

	Placeholder           *string
	Provider              *string
	ShowWelcomeBack       bool
	WelcomeBackRightPanel []string
}

// ConfigFromRuntime derives the TUI configuration from a built runtime.
// The CLI's permission mode wins over the scenario's only when it was
// explicitly changed from the default.
func ConfigFromRuntime(rt *runtime.Runtime) Config {
	ctx := rt.Context
	cli := rt.CLI()

	cfg := Config{
		Trusted:          ctx.Trusted,
		LoggedIn:         true,
		UserName:         ctx.UserName,
		Model:            ctx.Model,
		WorkingDirectory: ctx.WorkingDirectory,
		PermissionMode:   ctx.PermissionMode,
		AllowBypassPermissions: cli.AllowDangerouslySkipPermissions ||
			cli.DangerouslySkipPermissions,
		Timeouts: rt.Timeouts(),
		IsTTY:    true,
	}
	if cli.PermissionMode != permission.ModeDefault {
		cfg.PermissionMode = cli.PermissionMode
	}
	cfg.BypassConfirmationNeeded = cfg.PermissionMode == permission.ModeBypass

	if cli.ClaudeVersion != nil {
		cfg.ClaudeVersion = cli.ClaudeVersion
	}
	if cli.Prompt != nil && *cli.Prompt != "" {
		cfg.InitialPrompt = cli.Prompt
	}

	if sc := rt.Scenario; sc != nil && sc.Config() != nil {
		scfg := sc.Config()
		cfg.LoggedIn = scfg.IsLoggedIn()
		cfg.Placeholder = scfg.Placeholder
		cfg.Provider = scfg.Provider
		cfg.ShowWelcomeBack = scfg.ShowWelcomeBack
		cfg.WelcomeBackRightPanel = scfg.WelcomeBackRightPanel
		if cfg.ClaudeVersion == nil && scfg.ClaudeVersion != nil {
			cfg.ClaudeVersion = scfg.ClaudeVersion
		}
	}
	return cfg
}
