package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"claudeless/internal/appversion"
	"claudeless/internal/tui"
	"claudeless/pkg/output"
	"claudeless/pkg/permission"
	"claudeless/pkg/runtime"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

// rootOptions holds the raw flag values before they are converted into
// a runtime.CLI. String fields paired with a Changed check distinguish
// "not given" from an explicit empty value.
type rootOptions struct {
	print        bool
	model        string
	outputFormat string
	systemPrompt string
	inputFormat  string
	inputFile    string
	cwd          string

	allowedTools    []string
	disallowedTools []string
	permissionMode  string
	allowSkipPerms  bool
	skipPerms       bool

	settingSources string
	settings       []string

	verbose                bool
	debug                  string
	includePartialMessages bool

	continueConversation bool
	resume               string
	sessionID            string
	noSessionPersistence bool

	mcpConfigs      []string
	strictMCPConfig bool
	mcpDebug        bool

	scenarioPath  string
	capturePath   string
	failure       string
	toolMode      string
	claudeVersion string

	showVersion bool

	stdin io.Reader
}

// newRootCmd creates the root claude command with all subcommands
// attached. stdin is the prompt source for piped print-mode input.
func newRootCmd(stdin io.Reader) *cobra.Command {
	o := &rootOptions{stdin: stdin}

	cmd := &cobra.Command{
		Use:   "claude [prompt]",
		Short: "Claude Code - starts an interactive session by default, use -p/--print for non-interactive output",
		Long:  "Claude Code - starts an interactive session by default, use -p/--print for\nnon-interactive output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRootFlags(cmd.Flags(), o)
	addCompatFlags(cmd.Flags())
	cmd.Flags().SetNormalizeFunc(normalizeFlagName)

	cmd.AddCommand(
		newDoctorCmd(),
		newInstallCmd(),
		newMCPCmd(),
		newPluginCmd(),
		newSetupTokenCmd(),
		newUpdateCmd(),
	)

	return cmd
}

func addRootFlags(flags *pflag.FlagSet, o *rootOptions) {
	flags.BoolVarP(&o.print, "print", "p", false, "Print response and exit (useful for pipes)")
	flags.StringVar(&o.model, "model", "", "Model for the current session")
	flags.StringVar(&o.outputFormat, "output-format", "text", "Output format (only works with --print): text, json, or stream-json")
	flags.StringVar(&o.systemPrompt, "system-prompt", "", "System prompt to use for the session")
	flags.StringVar(&o.inputFormat, "input-format", "text", "Input format (only works with --print): text or stream-json")
	flags.StringVar(&o.inputFile, "input-file", "", "Read the prompt from a file")
	flags.StringVar(&o.cwd, "cwd", "", "Working directory for the session")

	flags.StringSliceVar(&o.allowedTools, "allowed-tools", nil, "Comma or space-separated list of tool names to allow")
	flags.StringSliceVar(&o.disallowedTools, "disallowed-tools", nil, "Comma or space-separated list of tool names to deny")
	flags.StringVar(&o.permissionMode, "permission-mode", "", "Permission mode for the session (default, acceptEdits, bypassPermissions, delegate, dontAsk, plan)")
	flags.BoolVar(&o.allowSkipPerms, "allow-dangerously-skip-permissions", false, "Must be set to allow --dangerously-skip-permissions")
	flags.BoolVar(&o.skipPerms, "dangerously-skip-permissions", false, "Bypass all permission checks")

	flags.StringVar(&o.settingSources, "setting-sources", "", "Comma-separated list of setting sources to load (user, project, local)")
	flags.StringArrayVar(&o.settings, "settings", nil, "Path to a settings JSON file or a JSON string to load additional settings from")

	flags.BoolVar(&o.verbose, "verbose", false, "Override verbose mode setting from config")
	debugFlag := flags.VarPF(newOptionalString(&o.debug), "debug", "d", "Enable debug mode with optional category filtering")
	debugFlag.NoOptDefVal = debugEnabled
	flags.BoolVar(&o.includePartialMessages, "include-partial-messages", false, "Include partial message chunks as they arrive (only works with --print and --output-format=stream-json)")

	flags.BoolVarP(&o.continueConversation, "continue", "c", false, "Continue the most recent conversation in the current directory")
	flags.StringVarP(&o.resume, "resume", "r", "", "Resume a conversation by session ID")
	flags.StringVar(&o.sessionID, "session-id", "", "Use a specific session ID for the conversation (must be a valid UUID)")
	flags.BoolVar(&o.noSessionPersistence, "no-session-persistence", false, "Disable session persistence (only works with --print)")

	flags.StringArrayVar(&o.mcpConfigs, "mcp-config", nil, "Load MCP servers from JSON files or strings (space-separated)")
	flags.BoolVar(&o.strictMCPConfig, "strict-mcp-config", false, "Only use MCP servers from --mcp-config, ignoring all other MCP configurations")
	flags.BoolVar(&o.mcpDebug, "mcp-debug", false, "[DEPRECATED] Enable MCP debug mode")

	flags.StringVar(&o.scenarioPath, "scenario", "", "Path to a scenario file (TOML, YAML, or JSON)")
	flags.StringVar(&o.capturePath, "capture", "", "Path to a JSONL capture log for recording invocations")
	flags.StringVar(&o.failure, "failure", "", "Inject a failure mode (network-unreachable, connection-timeout, auth-error, rate-limit, out-of-credits, partial-response, malformed-json)")
	flags.StringVar(&o.toolMode, "tool-mode", "", "Tool execution mode (disabled, mock, live)")
	flags.StringVar(&o.claudeVersion, "claude-version", "", "Claude Code version to report in branding and --version output")

	flags.BoolVarP(&o.showVersion, "version", "v", false, "Output the version number")
}

// addCompatFlags registers flags the real CLI accepts that the
// simulator parses and ignores.
func addCompatFlags(flags *pflag.FlagSet) {
	flags.StringArray("add-dir", nil, "Additional directories to allow tool access to")
	flags.String("agent", "", "Agent for the current session")
	flags.String("agents", "", "JSON object defining custom agents")
	flags.String("append-system-prompt", "", "Append a system prompt to the default system prompt")
	flags.String("betas", "", "Comma or space-separated list of beta headers (API only)")
	flags.Bool("chrome", false, "Enable Chrome browser integration")
	flags.Bool("no-chrome", false, "Disable Chrome browser integration")
	flags.String("debug-file", "", "Write debug logs to a file instead of stderr")
	flags.Bool("disable-slash-commands", false, "Disable all skills and slash commands")
	flags.String("fallback-model", "", "Enable automatic fallback to specified model when default model is overloaded")
	flags.StringArray("file", nil, "Files to include in the session (as path or path:alias)")
	flags.Bool("fork-session", false, "When resuming, create a new session ID instead of reusing the original")
	flags.String("from-pr", "", "Resume a session from a PR number or URL")
	flags.Bool("ide", false, "Automatically connect to IDE on startup if exactly one valid IDE is available")
	flags.String("json-schema", "", "JSON schema for structured output")
	flags.Float64("max-budget-usd", 0, "Maximum dollar amount to spend on API requests")
	flags.StringArray("plugin-dir", nil, "Plugin directories to load for this session only")
	flags.Bool("replay-user-messages", false, "Re-emit user messages from stdin back on stdout for acknowledgment")
	flags.String("tools", "", "Specify the list of available tools")
}

// normalizeFlagName maps the camelCase flag spellings the real CLI
// accepts onto their kebab-case forms.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "allowedTools":
		name = "allowed-tools"
	case "disallowedTools":
		name = "disallowed-tools"
	}
	return pflag.NormalizedName(name)
}

// run is the main flow: convert flags, build the runtime, and enter
// either the interactive interface or print mode.
func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	if o.showVersion {
		fmt.Fprintln(cmd.OutOrStdout(), o.versionString())
		return nil
	}

	cli, err := o.buildCLI(cmd.Flags(), args)
	if err != nil {
		return err
	}

	configureLogging(cli, cmd.ErrOrStderr())

	builder, err := runtime.NewBuilder(cli)
	if err != nil {
		if cli.Bypass().NotAllowed() {
			fmt.Fprintln(cmd.ErrOrStderr(), permission.BypassErrorMessage)
			return &exitError{code: scenario.ExitError}
		}
		return err
	}
	rt, err := builder.BuildFromCLI()
	if err != nil {
		return err
	}

	if rt.ShouldUseTUI() {
		rt.SetInteractive(true)
		reason, err := tui.Run(rt, tui.ConfigFromRuntime(rt))
		if err != nil {
			return err
		}
		switch reason {
		case tui.ExitInterrupted:
			return &exitError{code: scenario.ExitInterrupted}
		case tui.ExitError:
			return &exitError{code: scenario.ExitError}
		default:
			return nil
		}
	}

	code, err := rt.ExecutePrintMode(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if code != scenario.ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

// buildCLI converts the raw flags into the runtime's parsed form,
// applying environment fallbacks for the simulator options.
func (o *rootOptions) buildCLI(flags *pflag.FlagSet, args []string) (*runtime.CLI, error) {
	cli := runtime.NewCLI()

	if len(args) > 0 {
		cli.Prompt = &args[0]
	}
	cli.Print = o.print
	if o.model != "" {
		cli.Model = o.model
	}
	format, err := output.ParseFormat(o.outputFormat)
	if err != nil {
		return nil, err
	}
	cli.OutputFormat = format
	if flags.Changed("system-prompt") {
		cli.SystemPrompt = &o.systemPrompt
	}
	if o.inputFormat != "text" && o.inputFormat != "stream-json" {
		return nil, fmt.Errorf("invalid input format: %s", o.inputFormat)
	}
	if o.inputFile != "" {
		cli.InputFile = &o.inputFile
	}
	if o.cwd != "" {
		cli.Cwd = &o.cwd
	}

	cli.AllowedTools = o.allowedTools
	cli.DisallowedTools = o.disallowedTools
	mode, err := permission.ParseMode(o.permissionMode)
	if err != nil {
		return nil, err
	}
	cli.PermissionMode = mode
	cli.AllowDangerouslySkipPermissions = o.allowSkipPerms || envTruthy("CLAUDE_ALLOW_DANGEROUSLY_SKIP_PERMISSIONS")
	cli.DangerouslySkipPermissions = o.skipPerms || envTruthy("CLAUDE_DANGEROUSLY_SKIP_PERMISSIONS")

	if flags.Changed("setting-sources") {
		cli.SettingSources = []state.SettingsSource{}
		for _, raw := range strings.Split(o.settingSources, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			source, err := state.ParseSettingsSource(raw)
			if err != nil {
				return nil, err
			}
			cli.SettingSources = append(cli.SettingSources, source)
		}
	}
	cli.Settings = o.settings

	cli.Verbose = o.verbose
	if o.debug != "" {
		cli.Debug = true
		if o.debug != debugEnabled {
			cli.DebugFilter = o.debug
		}
	}
	cli.IncludePartialMessages = o.includePartialMessages

	cli.ContinueConversation = o.continueConversation
	if o.resume != "" {
		cli.Resume = &o.resume
	}
	if o.sessionID != "" {
		cli.SessionID = &o.sessionID
	}
	cli.NoSessionPersistence = o.noSessionPersistence

	cli.MCPConfigs = o.mcpConfigs
	cli.StrictMCPConfig = o.strictMCPConfig
	cli.MCPDebug = o.mcpDebug

	cli.Scenario = stringOrEnv(o.scenarioPath, "CLAUDELESS_SCENARIO")
	cli.Capture = stringOrEnv(o.capturePath, "CLAUDELESS_CAPTURE")
	cli.Failure = stringOrEnv(o.failure, "CLAUDELESS_FAILURE")
	if o.toolMode != "" {
		cli.ToolMode = &o.toolMode
	}
	cli.ClaudeVersion = stringOrEnv(o.claudeVersion, "CLAUDELESS_CLAUDE_VERSION")

	if cli.Prompt == nil {
		if prompt, err := o.readPromptInput(cli); err != nil {
			return nil, err
		} else if prompt != nil {
			cli.Prompt = prompt
		}
	}

	return cli, nil
}

// readPromptInput resolves a prompt from --input-file or, in print
// mode, from piped stdin.
func (o *rootOptions) readPromptInput(cli *runtime.CLI) (*string, error) {
	if cli.InputFile != nil {
		data, err := os.ReadFile(*cli.InputFile)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		prompt := strings.TrimRight(string(data), "\n")
		return &prompt, nil
	}
	if !cli.Print || o.stdin == nil {
		return nil, nil
	}
	if f, ok := o.stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return nil, nil
	}
	data, err := io.ReadAll(o.stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	prompt := strings.TrimRight(string(data), "\n")
	if prompt == "" {
		return nil, nil
	}
	return &prompt, nil
}

// versionString reports the simulated product version when
// --claude-version (or its environment fallback) is set.
func (o *rootOptions) versionString() string {
	if v := stringOrEnv(o.claudeVersion, "CLAUDELESS_CLAUDE_VERSION"); v != nil {
		return fmt.Sprintf("%s (Claude Code)", *v)
	}
	return fmt.Sprintf("claudeless %s", appversion.String())
}

// configureLogging enables the global debug logger when --debug is
// set. Subsystems log through zerolog's package-level logger.
func configureLogging(cli *runtime.CLI, stderr io.Writer) {
	if !cli.Debug {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	if cli.DebugFilter != "" {
		log.Logger = log.Logger.With().Str("filter", cli.DebugFilter).Logger()
	}
}

// debugEnabled is the sentinel --debug takes when given without a
// category filter.
const debugEnabled = "true"

// optionalString is a pflag.Value for flags that take an optional
// argument, like -d/--debug.
type optionalString struct{ target *string }

func newOptionalString(target *string) *optionalString {
	return &optionalString{target: target}
}

func (s *optionalString) Set(v string) error { *s.target = v; return nil }
func (s *optionalString) String() string     { return *s.target }
func (s *optionalString) Type() string       { return "string" }

func stringOrEnv(flagValue, envName string) *string {
	if flagValue != "" {
		return &flagValue
	}
	if v := os.Getenv(envName); v != "" {
		return &v
	}
	return nil
}

func envTruthy(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// exitError carries a process exit code out of cobra's Execute without
// printing anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }
