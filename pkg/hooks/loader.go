package hooks

import (
	"fmt"
	"os"

	"claudeless/pkg/state"
)

// settingsEvents maps the settings-file event names onto hook events.
// Unknown names are skipped.
var settingsEvents = map[string]Event{
	"Stop":         EventStop,
	"PreToolUse":   EventPreToolExecution,
	"PostToolUse":  EventPostToolExecution,
	"SessionStart": EventSessionStart,
	"Notification": EventNotification,
}

// LoadFromSettings builds an executor from the hooks block of merged
// settings. Only bash commands are supported; each command body is
// written to a temp script that stays on disk for the session.
func LoadFromSettings(settings *state.Settings) (*Executor, error) {
	executor := NewExecutor()
	for _, def := range settings.Hooks {
		event, ok := settingsEvents[def.Matcher.Event]
		if !ok {
			continue
		}
		for _, cmd := range def.Hooks {
			if cmd.CommandType != "bash" {
				continue
			}
			path, err := createHookScript(cmd.Command)
			if err != nil {
				return nil, err
			}
			config := NewConfig(path)
			if cmd.Timeout > 0 {
				config.TimeoutMS = cmd.Timeout
			}
			config.Blocking = true
			config.Matcher = def.Matcher.Matcher
			executor.Register(event, config)
		}
	}
	return executor, nil
}

// createHookScript writes a settings hook command to a kept temp file.
func createHookScript(command string) (string, error) {
	f, err := os.CreateTemp("", "claudeless-hook-*.sh")
	if err != nil {
		return "", fmt.Errorf("create hook script: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "#!/bin/bash\n%s\n", command); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write hook script: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o755); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("chmod hook script: %w", err)
	}
	return f.Name(), nil
}
