package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

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

// NoScenarioGreeting is the reply when no scenario is loaded.
const NoScenarioGreeting = "Hello! I'm Claudeless!"

// toolLoopFinalMessage closes out a turn after all tool calls ran.
const toolLoopFinalMessage = "Done! The requested operation has been completed successfully."

// PendingPermission is a tool call that stopped the turn waiting for
// an interactive decision.
type PendingPermission struct {
	ToolCall  scenario.ToolCallSpec
	ToolUseID string
	// Index is the call's position in the turn's tool plan.
	Index int
	// UserUUID is the session-log id of the turn's user message, so an
	// interactive caller can append the tool_use and its result.
	UserUUID string
}

// TurnResult is the outcome of one executed turn.
type TurnResult struct {
	// Response is the matched response spec, never nil.
	Response *scenario.ResponseSpec

	// Failure is set when the turn hit a scenario failure. The session
	// log entry has already been written; the caller owns stderr and
	// the exit code.
	Failure *scenario.FailureSpec

	// ToolResults holds the results of the calls that ran.
	ToolResults []tools.Result

	// PendingPermission is set when a call needs an interactive grant.
	PendingPermission *PendingPermission

	// HookContinuation carries the next prompt when a Stop hook blocked.
	HookContinuation *string

	// IsHookContinuation marks turns that a Stop hook initiated.
	IsHookContinuation bool
}

// ResponseText returns the turn's assistant text.
func (r *TurnResult) ResponseText() string {
	if r.Response == nil {
		return ""
	}
	return r.Response.Text
}

// Runtime owns the composed subsystems for one session: merged
// context, scenario, executor, state writer, capture log, hooks, and
// MCP manager.
type Runtime struct {
	Context  Context
	Scenario *scenario.Scenario

	executor tools.Executor
	state    *state.Writer
	capture  *capture.Log
	hooks    *hooks.Executor
	mcp      *mcp.Manager
	cli      *CLI
	timeouts scenario.ResolvedTimeouts
	checker  *permission.Checker
	clk      clock.Clock

	stopHookActive bool

	// interactive surfaces permission prompts as pending decisions
	// instead of denials. The TUI sets this.
	interactive bool
}

// SessionID returns the session identifier as a string.
func (r *Runtime) SessionID() string { return r.Context.SessionID.String() }

// CLI returns the parsed command line.
func (r *Runtime) CLI() *CLI { return r.cli }

// StateWriter returns the session writer, nil when persistence is off.
func (r *Runtime) StateWriter() *state.Writer { return r.state }

// CaptureLog returns the capture log, nil when not configured.
func (r *Runtime) CaptureLog() *capture.Log { return r.capture }

// HookExecutor returns the hook executor, nil when no hooks loaded.
func (r *Runtime) HookExecutor() *hooks.Executor { return r.hooks }

// MCPManager returns the MCP server manager, nil when none configured.
func (r *Runtime) MCPManager() *mcp.Manager { return r.mcp }

// Timeouts returns the resolved timeout set.
func (r *Runtime) Timeouts() scenario.ResolvedTimeouts { return r.timeouts }

// Checker returns the permission checker.
func (r *Runtime) Checker() *permission.Checker { return r.checker }

// ShouldUseTUI reports whether the interactive interface should run.
func (r *Runtime) ShouldUseTUI() bool { return r.cli.ShouldUseTUI() }

// SetInteractive switches pending-permission surfacing on. The TUI
// calls this once at startup.
func (r *Runtime) SetInteractive(v bool) { r.interactive = v }

// StopHookActive reports whether a Stop hook continuation is running.
func (r *Runtime) StopHookActive() bool { return r.stopHookActive }

// Execute runs one turn: match the prompt, apply the response delay,
// execute planned tool calls, record the session log, and fire Stop
// hooks. A scenario failure comes back on the result with its session
// entry already written.
func (r *Runtime) Execute(ctx context.Context, prompt string) (*TurnResult, error) {
	isContinuation := r.stopHookActive

	response, failure := r.matchPrompt(prompt)
	if failure != nil {
		if err := r.recordFailure(failure); err != nil {
			return nil, err
		}
		return &TurnResult{
			Response:           &scenario.ResponseSpec{},
			Failure:            failure,
			IsHookContinuation: isContinuation,
		}, nil
	}

	if response.DelayMS > 0 {
		if err := r.clk.Sleep(ctx, time.Duration(response.DelayMS)*time.Millisecond); err != nil {
			return nil, err
		}
	}

	result := &TurnResult{Response: response, IsHookContinuation: isContinuation}

	if len(response.ToolCalls) == 0 {
		if r.state != nil {
			if err := r.state.RecordTurn(prompt, response.Text); err != nil {
				return nil, fmt.Errorf("recording turn: %w", err)
			}
		}
	} else if err := r.executeToolCalls(prompt, response, result); err != nil {
		return nil, err
	}

	// A pending permission pauses the turn before the Stop hook fires.
	if result.PendingPermission == nil {
		if cont, err := r.fireStopHook(ctx); err == nil && cont != nil {
			result.HookContinuation = cont
			r.stopHookActive = true
		}
	}

	return result, nil
}

// matchPrompt resolves a prompt to a response or failure. With no
// scenario loaded the simulator greets; with one loaded but nothing
// matched the default response applies, else the response is empty.
func (r *Runtime) matchPrompt(prompt string) (*scenario.ResponseSpec, *scenario.FailureSpec) {
	if r.Scenario == nil {
		return scenario.SimpleResponse(NoScenarioGreeting), nil
	}
	if res, ok := r.Scenario.Match(prompt); ok {
		if res.Failure != nil {
			return nil, res.Failure
		}
		if res.Response != nil {
			return res.Response, nil
		}
		return &scenario.ResponseSpec{}, nil
	}
	if def := r.Scenario.DefaultResponse(); def != nil {
		return def, nil
	}
	return &scenario.ResponseSpec{}, nil
}

// recordFailure writes the failure's error entry to the session log.
// Malformed-output failures corrupt stdout only and are never logged.
func (r *Runtime) recordFailure(f *scenario.FailureSpec) error {
	if r.state == nil || !f.Recorded() {
		return nil
	}
	var errType *string
	if t := f.ErrorType(); t != "" {
		errType = &t
	}
	var retryAfter *int64
	if f.Type == scenario.FailureRateLimit {
		v := f.RetryAfter
		retryAfter = &v
	}
	if err := r.state.RecordError(f.ErrorMessage(), errType, retryAfter, f.DurationMS()); err != nil {
		return fmt.Errorf("recording failure: %w", err)
	}
	return nil
}

// toolMode resolves the execution mode: the --tool-mode flag wins,
// then the scenario's tool_execution block, then live.
func (r *Runtime) toolMode() string {
	if r.cli.ToolMode != nil {
		return *r.cli.ToolMode
	}
	if r.Scenario != nil {
		return r.Scenario.Config().ToolExecution.EffectiveMode()
	}
	return scenario.ToolModeLive
}

// executeToolCalls runs the turn's tool plan with granular session
// recording: user message, assistant text, one tool_use/tool_result
// pair per call, then the closing assistant message.
func (r *Runtime) executeToolCalls(prompt string, response *scenario.ResponseSpec, result *TurnResult) error {
	var userUUID string
	if r.state != nil {
		var err error
		userUUID, err = r.state.RecordUserMessage(prompt)
		if err != nil {
			return fmt.Errorf("recording user message: %w", err)
		}
		if response.Text != "" {
			if _, err := r.state.RecordAssistantResponse(userUUID, response.Text); err != nil {
				return fmt.Errorf("recording assistant response: %w", err)
			}
		}
	}

	if r.toolMode() == scenario.ToolModeDisabled {
		return nil
	}

	var toolCfg *scenario.ToolExecutionConfig
	if r.Scenario != nil {
		toolCfg = r.Scenario.Config().ToolExecution
	}
	execCtx := tools.ContextFromConfig(toolCfg).
		WithCwd(r.Context.WorkingDirectory).
		WithSessionID(r.SessionID())

	for i := range response.ToolCalls {
		call := &response.ToolCalls[i]
		toolUseID := fmt.Sprintf("toolu_%08x", i)

		if r.interactive && r.checker != nil {
			check := r.checker.Check(call.Tool, tools.PermissionAction(call.Tool))
			if check.Decision == permission.NeedsPrompt {
				result.PendingPermission = &PendingPermission{
					ToolCall:  *call,
					ToolUseID: toolUseID,
					Index:     i,
					UserUUID:  userUUID,
				}
				return nil
			}
		}

		var assistantUUID string
		if r.state != nil {
			block := state.ToolUseBlock(toolUseID, call.Tool, call.Input)
			var err error
			assistantUUID, err = r.state.RecordAssistantToolUse(userUUID, []state.ContentBlock{block})
			if err != nil {
				return fmt.Errorf("recording tool use: %w", err)
			}
		}

		res := r.executor.Execute(call, toolUseID, &execCtx)
		if res.NeedsPrompt {
			result.PendingPermission = &PendingPermission{
				ToolCall:  *call,
				ToolUseID: toolUseID,
				Index:     i,
				UserUUID:  userUUID,
			}
			return nil
		}
		result.ToolResults = append(result.ToolResults, res)

		if r.state != nil {
			text, _ := res.Text()
			toolUseResult := res.ToolUseResult
			if len(toolUseResult) == 0 {
				toolUseResult = json.RawMessage(`{}`)
			}
			if _, err := r.state.RecordToolResult(toolUseID, text, assistantUUID, toolUseResult); err != nil {
				return fmt.Errorf("recording tool result: %w", err)
			}
		}
	}

	if r.state != nil {
		if _, err := r.state.RecordAssistantResponse(userUUID, toolLoopFinalMessage); err != nil {
			return fmt.Errorf("recording final response: %w", err)
		}
	}
	return nil
}

// fireStopHook runs registered Stop hooks and returns the continuation
// prompt when one blocks.
func (r *Runtime) fireStopHook(ctx context.Context) (*string, error) {
	if r.hooks == nil || !r.hooks.HasHooks(hooks.EventStop) {
		return nil, nil
	}
	responses, err := r.hooks.Execute(ctx, hooks.Stop(r.SessionID(), r.stopHookActive))
	if err != nil {
		return nil, err
	}
	for _, resp := range responses {
		if len(resp.Data) == 0 {
			continue
		}
		stop, err := hooks.ParseStopResponse(resp.Data)
		if err != nil {
			continue
		}
		if stop.Blocked() {
			cont := "continue"
			if stop.Reason != nil {
				cont = *stop.Reason
			}
			return &cont, nil
		}
	}
	return nil, nil
}

// mcpToolNames returns the qualified names of every registered MCP tool.
func (r *Runtime) mcpToolNames() []string {
	if r.mcp == nil {
		return nil
	}
	defs := r.mcp.Tools()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.QualifiedName())
	}
	return names
}

// mcpServerInfo builds the per-server status list for the init event.
func (r *Runtime) mcpServerInfo() []output.MCPServerInfo {
	if r.mcp == nil {
		return nil
	}
	var infos []output.MCPServerInfo
	for _, srv := range r.mcp.Servers() {
		switch srv.Status {
		case mcp.StatusRunning:
			infos = append(infos, output.ConnectedServer(srv.Name))
		case mcp.StatusFailed:
			infos = append(infos, output.FailedServer(srv.Name))
		case mcp.StatusDisconnected:
			infos = append(infos, output.DisconnectedServer(srv.Name))
		}
	}
	return infos
}

// ShutdownMCP stops all MCP servers. Runs once at process exit.
func (r *Runtime) ShutdownMCP() {
	if r.mcp != nil {
		r.mcp.Shutdown()
	}
}
