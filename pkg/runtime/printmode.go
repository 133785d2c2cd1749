package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"claudeless/pkg/capture"
	"claudeless/pkg/output"
	"claudeless/pkg/scenario"
)

// ErrNoPrompt is returned when print mode starts without input.
var ErrNoPrompt = errors.New("Input must be provided either through stdin or as a prompt argument when using --print")

// ExecutePrintMode runs the non-interactive path: one prompt in,
// encoded response out, looping only when a Stop hook blocks. The
// returned int is the process exit code.
func (r *Runtime) ExecutePrintMode(ctx context.Context, stdout, stderr io.Writer) (int, error) {
	if r.cli.Prompt == nil {
		return scenario.ExitError, ErrNoPrompt
	}
	prompt := *r.cli.Prompt
	args := r.capturedArgs()

	// An injected failure preempts the scenario entirely.
	if r.cli.Failure != nil {
		f, err := scenario.FromMode(*r.cli.Failure)
		if err != nil {
			return scenario.ExitError, err
		}
		if r.capture != nil {
			r.capture.Record(args, capture.FailureOutcome(f.Type, "Injected failure"))
		}
		r.writeQueueOperation()
		if err := r.recordFailure(f); err != nil {
			return scenario.ExitError, err
		}
		return r.writeFailure(ctx, stderr, f), nil
	}

	if r.timeouts.ResponseDelayMS > 0 {
		if err := r.clk.Sleep(ctx, time.Duration(r.timeouts.ResponseDelayMS)*time.Millisecond); err != nil {
			return scenario.ExitError, err
		}
	}

	// The queue-operation record lands before any turn recording.
	r.writeQueueOperation()

	for {
		result, err := r.Execute(ctx, prompt)
		if err != nil {
			return scenario.ExitError, err
		}

		if result.Failure != nil {
			if r.capture != nil {
				r.capture.Record(args, capture.FailureOutcome(result.Failure.Type, "Scenario failure"))
			}
			return r.writeFailure(ctx, stderr, result.Failure), nil
		}

		if !result.IsHookContinuation {
			r.recordCapture(args, result)
		}

		if err := r.writeTurnResult(stdout, result); err != nil {
			return scenario.ExitError, err
		}

		if result.HookContinuation == nil {
			break
		}
		prompt = *result.HookContinuation
	}

	r.ShutdownMCP()
	return scenario.ExitSuccess, nil
}

// capturedArgs snapshots the CLI arguments for the capture log.
func (r *Runtime) capturedArgs() capture.Args {
	return capture.Args{
		Prompt:               r.cli.Prompt,
		Model:                r.cli.Model,
		OutputFormat:         string(r.cli.OutputFormat),
		PrintMode:            r.cli.Print,
		ContinueConversation: r.cli.ContinueConversation,
		Resume:               r.cli.Resume,
		AllowedTools:         r.cli.AllowedTools,
		Cwd:                  r.cli.Cwd,
	}
}

// recordCapture logs the turn's outcome: a response when there was
// text, a no-match otherwise.
func (r *Runtime) recordCapture(args capture.Args, result *TurnResult) {
	if r.capture == nil {
		return
	}
	text := result.ResponseText()
	if text == "" {
		r.capture.Record(args, capture.NoMatchOutcome(false))
		return
	}
	rule := "matched"
	var delay uint64
	if result.Response.DelayMS > 0 {
		delay = uint64(result.Response.DelayMS)
	}
	r.capture.Record(args, capture.ResponseOutcome(text, &rule, delay))
}

// writeTurnResult encodes the response and each tool result to stdout.
func (r *Runtime) writeTurnResult(w io.Writer, result *TurnResult) error {
	writer := output.NewWriter(w, r.cli.OutputFormat, r.cli.Model)

	toolNames := append([]string{}, r.cli.AllowedTools...)
	toolNames = append(toolNames, r.mcpToolNames()...)

	if err := writer.WriteRealResponseWithMCP(result.Response, r.SessionID(), toolNames, r.mcpServerInfo()); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	for i := range result.ToolResults {
		if err := writer.WriteToolResult(&result.ToolResults[i]); err != nil {
			return fmt.Errorf("writing tool result: %w", err)
		}
	}
	return nil
}

// writeQueueOperation appends the print-mode queue marker unless
// persistence is disabled.
func (r *Runtime) writeQueueOperation() {
	if r.cli.Print && !r.cli.NoSessionPersistence && r.state != nil {
		_ = r.state.WriteQueueOperation()
	}
}
