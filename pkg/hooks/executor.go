package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeoutMS is the per-hook timeout used when a config does not
// set one.
const DefaultTimeoutMS = 5000

// ErrTimeout is returned when a hook script exceeds its timeout.
var ErrTimeout = errors.New("hook execution timed out")

// ExitError is a hook script exiting non-zero (other than the exit-2
// block convention).
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("hook exited with non-zero status (code: %d): %s", e.Code, e.Stderr)
}

// Config is one registered hook script.
type Config struct {
	// ScriptPath is the executable run via /bin/bash.
	ScriptPath string

	// TimeoutMS bounds the script's runtime.
	TimeoutMS uint64

	// Blocking hooks short-circuit the rest of the event's chain when
	// they return proceed=false.
	Blocking bool

	// Matcher is an optional pipe-separated sub-event filter. For
	// Notification events it matches the notification type, for tool
	// events the tool name.
	Matcher string
}

// NewConfig returns a config with the default timeout.
func NewConfig(scriptPath string) Config {
	return Config{ScriptPath: scriptPath, TimeoutMS: DefaultTimeoutMS}
}

func (c Config) matches(msg Message) bool {
	if c.Matcher == "" {
		return true
	}
	subject, ok := msg.matchSubject()
	if !ok {
		return true
	}
	for _, segment := range strings.Split(c.Matcher, "|") {
		if strings.TrimSpace(segment) == subject {
			return true
		}
	}
	return false
}

// Executor runs registered hook scripts for events.
type Executor struct {
	hooks map[Event][]Config

	// Common context fields injected into every wire payload.
	cwd            string
	transcriptPath string
	permissionMode string
}

// NewExecutor returns an executor with no hooks registered.
func NewExecutor() *Executor {
	return &Executor{hooks: map[Event][]Config{}}
}

// WithContext sets the common fields injected into every hook payload.
// Empty strings are omitted from the wire object.
func (e *Executor) WithContext(cwd, transcriptPath, permissionMode string) *Executor {
	e.cwd = cwd
	e.transcriptPath = transcriptPath
	e.permissionMode = permissionMode
	return e
}

// Register adds a hook for an event. Hooks fire in registration order.
func (e *Executor) Register(event Event, config Config) {
	e.hooks[event] = append(e.hooks[event], config)
}

// HasHooks reports whether any hook is registered for the event.
func (e *Executor) HasHooks(event Event) bool {
	return len(e.hooks[event]) > 0
}

// HookCount returns the number of hooks registered for the event.
func (e *Executor) HookCount(event Event) int {
	return len(e.hooks[event])
}

// RegisteredEvents lists the events that have at least one hook.
func (e *Executor) RegisteredEvents() []Event {
	events := make([]Event, 0, len(e.hooks))
	for ev := range e.hooks {
		events = append(events, ev)
	}
	return events
}

// Clear removes all hooks.
func (e *Executor) Clear() {
	e.hooks = map[Event][]Config{}
}

// ClearEvent removes the hooks for one event.
func (e *Executor) ClearEvent(event Event) {
	delete(e.hooks, event)
}

// Execute runs every matching hook for the message's event in order.
// A blocking hook that returns proceed=false stops the chain; its
// response is the last one returned.
func (e *Executor) Execute(ctx context.Context, msg Message) ([]Response, error) {
	hooks := e.hooks[msg.Event]
	if len(hooks) == 0 {
		return nil, nil
	}

	var responses []Response
	for _, hook := range hooks {
		if !hook.matches(msg) {
			continue
		}
		resp, err := e.executeHook(ctx, hook, msg)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
		if hook.Blocking && !resp.Proceed {
			log.Debug().
				Str("event", string(msg.Event)).
				Str("script", hook.ScriptPath).
				Str("reason", resp.Error).
				Msg("blocking hook stopped the chain")
			break
		}
	}
	return responses, nil
}

func (e *Executor) executeHook(ctx context.Context, config Config, msg Message) (Response, error) {
	wire := msg.WireJSON()
	if e.cwd != "" {
		wire["cwd"] = e.cwd
	}
	if e.transcriptPath != "" {
		wire["transcript_path"] = e.transcriptPath
	}
	if e.permissionMode != "" {
		wire["permission_mode"] = e.permissionMode
	}
	input, err := json.Marshal(wire)
	if err != nil {
		return Response{}, fmt.Errorf("serialize hook message: %w", err)
	}

	timeout := time.Duration(config.TimeoutMS) * time.Millisecond
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/bash", config.ScriptPath)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return Response{}, ErrTimeout
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Exit code 2 is the block/deny convention, with the
			// reason on stderr.
			if exitErr.ExitCode() == 2 {
				return Block(strings.TrimSpace(stderr.String())), nil
			}
			return Response{}, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return Response{}, fmt.Errorf("spawn hook script: %w", runErr)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return Proceed(), nil
	}
	var resp Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return Response{}, fmt.Errorf("invalid hook response: %w", err)
	}
	return resp, nil
}
