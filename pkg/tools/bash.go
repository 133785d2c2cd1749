package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"claudeless/pkg/scenario"
)

// bashTool runs shell commands through sh -c.
type bashTool struct{}

func (bashTool) execute(call *scenario.ToolCallSpec, toolUseID string, ctx *builtinContext) Result {
	command, ok := extractStr(call.InputMap(), "command")
	if !ok {
		return Error(toolUseID, "Missing 'command' field in Bash tool input")
	}

	cmd := exec.Command("sh", "-c", command)
	if ctx.cwd != "" {
		cmd.Dir = ctx.cwd
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Success(toolUseID, strings.TrimSpace(stdout.String()))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("Command failed with exit code: %d", exitErr.ExitCode())
		}
		return Error(toolUseID, msg)
	}
	return Error(toolUseID, fmt.Sprintf("Failed to execute command: %s", err))
}

func (bashTool) toolName() string { return NameBash }
