package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"claudeless/pkg/permission"
	"claudeless/pkg/runtime"
	"claudeless/pkg/state"
)

// tickMsg drives the spinner and timeout checks at a fixed interval.
type tickMsg time.Time

// turnMsg carries the outcome of a prompt executed on the runtime.
type turnMsg struct {
	prompt string
	result *runtime.TurnResult
	err    error
}

func tickCmd() tea.Cmd {
	return tea.Tick(baseSpinner.FPS, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	rt  *runtime.Runtime
	cfg Config

	mode    appMode
	input   inputState
	display displayState
	status  statusInfo

	permissionMode permission.Mode
	sessionGrants  map[string]struct{}
	trustGranted   bool

	thinkingEnabled bool
	allowBypass     bool

	shouldExit  bool
	exitReason  ExitReason
	exitMessage string

	isCompacting      bool
	compactingStarted time.Time

	todos []state.TodoItem

	stopHookActive     bool
	pendingHookMessage *string

	// One dialog pointer per mode; at most one is non-nil.
	trust       *trustPromptState
	bypass      *bypassConfirmState
	thinking    *thinkingDialog
	perm        *permissionRequest
	tasks       *tasksDialog
	modelPicker *modelPickerDialog
	export      *exportDialog
	help        *helpDialog
	hooks       *hooksDialog
	memory      *memoryDialog
	elicit      *elicitationState
	plan        *planApprovalState
	setup       *setupState

	// toolHistory feeds the /compact summary.
	toolHistory []toolCallRecord
	turnCount   int

	// initialPrompt is queued until trust and setup complete.
	initialPrompt *string

	// lastPrompt is kept for elicitation and plan re-execution.
	lastPrompt string
}

// New builds the TUI model over a configured runtime.
func New(rt *runtime.Runtime, cfg Config) *Model {
	m := &Model{
		rt:              rt,
		cfg:             cfg,
		mode:            modeInput,
		input:           inputState{},
		display:         newDisplayState(),
		sessionGrants:   map[string]struct{}{},
		thinkingEnabled: true,
		trustGranted:    cfg.Trusted,
		allowBypass:     cfg.AllowBypassPermissions,
		permissionMode:  cfg.PermissionMode,
		initialPrompt:   cfg.InitialPrompt,
	}
	if m.permissionMode == "" {
		m.permissionMode = permission.ModeDefault
	}
	m.status = statusInfo{
		model:     cfg.Model,
		sessionID: rt.SessionID(),
	}

	switch {
	case !cfg.Trusted:
		m.mode = modeTrust
		m.trust = &trustPromptState{workingDirectory: cfg.WorkingDirectory, selectedYes: true}
	case cfg.BypassConfirmationNeeded:
		m.mode = modeBypassConfirm
		m.bypass = &bypassConfirmState{}
	case !cfg.LoggedIn:
		m.mode = modeSetup
		m.setup = newSetupState(m.productVersion())
	}

	return m
}

// productVersion is what headers and the setup banner display.
func (m *Model) productVersion() string {
	if m.cfg.ClaudeVersion != nil {
		return *m.cfg.ClaudeVersion
	}
	return "2.1.12"
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.mode == modeInput && m.initialPrompt != nil {
		prompt := *m.initialPrompt
		m.initialPrompt = nil
		cmds = append(cmds, m.processPrompt(prompt))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.display.terminalWidth = msg.Width
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if m.mode == modeResponding || m.mode == modeThinking {
			m.display.spinnerFrame = (m.display.spinnerFrame + 1) % len(spinnerCycle())
		}
		m.checkExitHintTimeout(now)
		m.checkCompacting(now)
		if cmd := m.checkPendingHookMessage(); cmd != nil {
			return m, tea.Batch(cmd, tickCmd())
		}
		if m.shouldExit {
			return m, tea.Quit
		}
		return m, tickCmd()

	case turnMsg:
		cmd := m.handleTurn(msg)
		if m.shouldExit {
			return m, tea.Quit
		}
		return m, cmd

	case tea.ResumeMsg:
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.shouldExit {
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, nil
}

// checkPendingHookMessage injects a stop-hook continuation as the next
// prompt once the previous turn has settled.
func (m *Model) checkPendingHookMessage() tea.Cmd {
	if m.pendingHookMessage == nil {
		return nil
	}
	hookMsg := *m.pendingHookMessage
	m.pendingHookMessage = nil
	return m.processPrompt(hookMsg)
}

// executeTurn runs one prompt on the runtime off the UI goroutine.
func (m *Model) executeTurn(prompt string) tea.Cmd {
	rt := m.rt
	return func() tea.Msg {
		result, err := rt.Execute(context.Background(), prompt)
		return turnMsg{prompt: prompt, result: result, err: err}
	}
}

// ExitReason reports why the session ended, for callers that map it to
// an exit code.
func (m *Model) SessionExitReason() ExitReason { return m.exitReason }

// ExitMessage is printed after the program ends, e.g. a /exit farewell.
func (m *Model) ExitMessage() string { return m.exitMessage }

// Run starts the interactive session and blocks until it ends.
func Run(rt *runtime.Runtime, cfg Config) (ExitReason, error) {
	m := New(rt, cfg)
	opts := []tea.ProgramOption{}
	if !cfg.IsTTY {
		opts = append(opts, tea.WithInput(nil), tea.WithOutput(os.Stdout))
	}
	p := tea.NewProgram(m, opts...)

	final, err := p.Run()
	if err != nil {
		return ExitError, fmt.Errorf("run tui: %w", err)
	}

	fm, ok := final.(*Model)
	if !ok {
		return ExitError, fmt.Errorf("unexpected final model type %T", final)
	}
	if msg := fm.ExitMessage(); msg != "" {
		fmt.Fprintln(os.Stdout, msg)
	}
	rt.ShutdownMCP()
	log.Debug().Str("reason", fmt.Sprintf("%v", fm.exitReason)).Msg("tui session ended")
	return fm.exitReason, nil
}
