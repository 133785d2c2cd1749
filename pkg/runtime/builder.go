package runtime

import (
	"errors"
	"fmt"
	"os"

	"claudeless/pkg/capture"
	"claudeless/pkg/clock"
	"claudeless/pkg/hooks"
	"claudeless/pkg/mcp"
	"claudeless/pkg/output"
	"claudeless/pkg/permission"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
	"claudeless/pkg/tools"
)

// Builder assembles a Runtime from CLI arguments. Each With* step is
// optional; Build wires whatever was loaded.
type Builder struct {
	cli      *CLI
	scn      *scenario.Scenario
	capture  *capture.Log
	mcpMgr   *mcp.Manager
	settings *state.Settings
	clk      clock.Clock
}

// NewBuilder validates the CLI arguments and the permission bypass
// flag pair before any subsystem loads.
func NewBuilder(cli *CLI) (*Builder, error) {
	if err := cli.Validate(); err != nil {
		return nil, err
	}
	if cli.Bypass().NotAllowed() {
		return nil, errors.New(permission.BypassErrorMessage)
	}
	return &Builder{cli: cli, clk: clock.NewSystem()}, nil
}

// WithClock overrides the runtime clock. Tests use a fake.
func (b *Builder) WithClock(c clock.Clock) *Builder {
	b.clk = c
	return b
}

// WithScenario loads and compiles a scenario file.
func (b *Builder) WithScenario(path string) error {
	cfg, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	scn, err := scenario.Compile(cfg)
	if err != nil {
		return fmt.Errorf("compiling scenario: %w", err)
	}
	b.scn = scn
	return nil
}

// WithScenarioFromCLI loads the scenario named by --scenario, if any.
func (b *Builder) WithScenarioFromCLI() error {
	if b.cli.Scenario == nil {
		return nil
	}
	return b.WithScenario(*b.cli.Scenario)
}

// WithCapture opens a capture log backed by a JSONL file.
func (b *Builder) WithCapture(path string) error {
	log, err := capture.NewFileLog(path)
	if err != nil {
		return fmt.Errorf("opening capture log: %w", err)
	}
	b.capture = log
	return nil
}

// WithCaptureFromCLI opens the capture log named by --capture, if any.
func (b *Builder) WithCaptureFromCLI() error {
	if b.cli.Capture == nil {
		return nil
	}
	return b.WithCapture(*b.cli.Capture)
}

// WithMCP merges the given configs and spawns the servers. With
// --strict-mcp-config a startup failure is fatal; otherwise failed
// servers stay registered so the init event can report them, and
// --mcp-debug prints a warning.
func (b *Builder) WithMCP(configs ...*mcp.Config) error {
	if len(configs) == 0 {
		return nil
	}
	merged := mcp.MergeConfigs(configs...)
	manager := mcp.ManagerFromConfig(merged)

	if b.cli.MCPDebug {
		output.PrintMCP(fmt.Sprintf("Loading %d server(s): %v",
			manager.ServerCount(), manager.ServerNames()))
	}

	for _, res := range manager.Initialize(b.cli.MCPDebug) {
		if res.Err == nil {
			if b.cli.MCPDebug {
				if srv, ok := manager.GetServer(res.Name); ok {
					output.PrintMCP(fmt.Sprintf("Server '%s' started with %d tool(s): %v",
						res.Name, len(srv.Tools), srv.ToolNames()))
				}
			}
			continue
		}
		if b.cli.StrictMCPConfig {
			return fmt.Errorf("MCP server '%s' failed to start: %s", res.Name, res.Err)
		}
		if b.cli.MCPDebug {
			output.PrintMCPWarning(fmt.Sprintf("Server '%s' failed to start: %s", res.Name, res.Err))
		}
	}

	if manager.RunningServerCount() == 0 && b.cli.MCPDebug {
		output.PrintMCP("No servers running")
	}

	b.mcpMgr = manager
	return nil
}

// WithMCPFromCLI loads every --mcp-config value and spawns the servers.
func (b *Builder) WithMCPFromCLI() error {
	if len(b.cli.MCPConfigs) == 0 {
		return nil
	}
	configs := make([]*mcp.Config, 0, len(b.cli.MCPConfigs))
	for _, input := range b.cli.MCPConfigs {
		cfg, err := mcp.LoadConfigInput(input)
		if err != nil {
			return fmt.Errorf("loading MCP config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return b.WithMCP(configs...)
}

// WithSettings loads the merged settings view, applying --settings
// overrides on top of the standard sources.
func (b *Builder) WithSettings() *Builder {
	b.settings = loadSettings(b.cli)
	return b
}

// Build wires the Runtime: merged context, state writer (unless
// persistence is off), hooks, executor, and timeouts.
func (b *Builder) Build() (*Runtime, error) {
	settings := b.settings
	if settings == nil {
		settings = loadSettings(b.cli)
	}

	var cfg *scenario.Config
	if b.scn != nil {
		cfg = b.scn.Config()
	}
	ctx := NewContext(cfg, b.cli, settings)

	var writer *state.Writer
	if !b.cli.NoSessionPersistence {
		w, err := state.NewWriter(ctx.SessionID.String(), ctx.ProjectPath,
			ctx.LaunchTimestamp, ctx.Model, ctx.WorkingDirectory, ctx.ClaudeVersion, b.clk)
		if err == nil {
			writer = w
		}
	}

	var hookExec *hooks.Executor
	if he, err := hooks.LoadFromSettings(settings); err == nil {
		hookExec = he
	}

	mode := scenario.ToolModeLive
	if cfg != nil && cfg.ToolExecution != nil {
		mode = cfg.ToolExecution.EffectiveMode()
	}
	if b.cli.ToolMode != nil {
		mode = *b.cli.ToolMode
	}
	executor := tools.NewExecutorWithMCP(mode, b.mcpMgr, writer)

	var overrides map[string]scenario.ToolConfig
	if cfg != nil && cfg.ToolExecution != nil {
		overrides = cfg.ToolExecution.Tools
	}
	checker := ctx.CheckerWithOverrides(b.cli.Bypass(), overrides)

	var timeoutCfg *scenario.TimeoutConfig
	if cfg != nil {
		timeoutCfg = cfg.Timeouts
	}

	return &Runtime{
		Context:  ctx,
		Scenario: b.scn,
		executor: executor,
		state:    writer,
		capture:  b.capture,
		hooks:    hookExec,
		mcp:      b.mcpMgr,
		cli:      b.cli,
		timeouts: scenario.ResolveTimeouts(timeoutCfg),
		checker:  checker,
		clk:      b.clk,
	}, nil
}

// BuildFromCLI runs every With* step driven by the CLI arguments, then
// builds. This is the path the cobra layer takes.
func (b *Builder) BuildFromCLI() (*Runtime, error) {
	if err := b.WithScenarioFromCLI(); err != nil {
		return nil, err
	}
	if err := b.WithCaptureFromCLI(); err != nil {
		return nil, err
	}
	if err := b.WithMCPFromCLI(); err != nil {
		return nil, err
	}
	return b.WithSettings().Build()
}

// loadSettings resolves the standard settings locations relative to
// the working directory and layers --settings overrides on top.
func loadSettings(cli *CLI) *state.Settings {
	workingDir := ""
	if cli.Cwd != nil {
		workingDir = *cli.Cwd
	} else {
		workingDir, _ = os.Getwd()
	}
	stateRoot := ""
	if dir, err := state.Resolve(); err == nil {
		stateRoot = dir.Root()
	}
	paths := state.ResolveSettingsPaths(stateRoot, workingDir)
	return paths.LoadWithOverrides(cli.SettingSources, cli.Settings)
}
