package hooks

import (
	"fmt"
	"os"
	"strings"
)

// Registry builds an Executor from inline script bodies, writing each
// one to a temp file. Used by scenario wiring and tests.
type Registry struct {
	executor         *Executor
	tempScripts      []string
	defaultTimeoutMS uint64
}

// NewRegistry returns a registry using the default hook timeout.
func NewRegistry() *Registry {
	return NewRegistryWithTimeout(DefaultTimeoutMS)
}

// NewRegistryWithTimeout returns a registry with a custom default
// timeout for every registered script.
func NewRegistryWithTimeout(defaultTimeoutMS uint64) *Registry {
	return &Registry{executor: NewExecutor(), defaultTimeoutMS: defaultTimeoutMS}
}

// RegisterScript writes the script body to a temp .sh file and
// registers it for the event.
func (r *Registry) RegisterScript(event Event, scriptContent string, blocking bool) error {
	path, err := writeHookScript("hook_", scriptContent)
	if err != nil {
		return err
	}
	config := NewConfig(path)
	config.TimeoutMS = r.defaultTimeoutMS
	config.Blocking = blocking
	r.executor.Register(event, config)
	r.tempScripts = append(r.tempScripts, path)
	return nil
}

// RegisterPassthrough registers a hook that always proceeds.
func (r *Registry) RegisterPassthrough(event Event) error {
	// Consume stdin first to avoid a broken pipe when the executor
	// writes the payload.
	return r.RegisterScript(event, `cat > /dev/null; echo '{"proceed": true}'`, false)
}

// RegisterBlocking registers a hook that blocks with a reason.
func (r *Registry) RegisterBlocking(event Event, reason string) error {
	escaped := strings.ReplaceAll(reason, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	script := fmt.Sprintf(`cat > /dev/null; echo '{"proceed": false, "error": "%s"}'`, escaped)
	return r.RegisterScript(event, script, true)
}

// RegisterEcho registers a hook that returns its input as data.
func (r *Registry) RegisterEcho(event Event) error {
	script := "input=$(cat)\necho \"{\\\"proceed\\\": true, \\\"data\\\": $input}\"\n"
	return r.RegisterScript(event, script, false)
}

// RegisterLogger registers a hook that appends its input to a file.
func (r *Registry) RegisterLogger(event Event, logPath string) error {
	script := fmt.Sprintf("cat >> %s\necho '{\"proceed\": true}'\n", logPath)
	return r.RegisterScript(event, script, false)
}

// RegisterDelayed registers a hook that sleeps before proceeding.
func (r *Registry) RegisterDelayed(event Event, delaySecs float64) error {
	script := fmt.Sprintf("cat > /dev/null\nsleep %g\necho '{\"proceed\": true}'\n", delaySecs)
	return r.RegisterScript(event, script, false)
}

// Executor returns the built executor.
func (r *Registry) Executor() *Executor {
	return r.executor
}

// HasHooks reports whether any hook is registered for the event.
func (r *Registry) HasHooks(event Event) bool {
	return r.executor.HasHooks(event)
}

// Clear removes all hooks and deletes the temp scripts.
func (r *Registry) Clear() {
	r.executor.Clear()
	for _, path := range r.tempScripts {
		os.Remove(path)
	}
	r.tempScripts = nil
}

// writeHookScript writes a bash script to a temp file with mode 0755.
func writeHookScript(prefix, content string) (string, error) {
	f, err := os.CreateTemp("", prefix+"*.sh")
	if err != nil {
		return "", fmt.Errorf("create hook script: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "#!/bin/bash\n%s", content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write hook script: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o755); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("chmod hook script: %w", err)
	}
	return f.Name(), nil
}
