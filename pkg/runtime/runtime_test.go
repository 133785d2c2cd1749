package runtime_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudeless/pkg/clock"
	"claudeless/pkg/output"
	"claudeless/pkg/permission"
	"claudeless/pkg/runtime"
	"claudeless/pkg/scenario"
	"claudeless/pkg/state"
)

func strPtr(s string) *string { return &s }

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func buildRuntime(t *testing.T, cli *runtime.CLI) *runtime.Runtime {
	t.Helper()
	t.Setenv(state.EnvStateDir, t.TempDir())
	b, err := runtime.NewBuilder(cli)
	require.NoError(t, err)
	b.WithClock(clock.NewFake(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)))
	rt, err := b.BuildFromCLI()
	require.NoError(t, err)
	return rt
}

func TestCLIValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*runtime.CLI)
		wantErr string
	}{
		{
			name:    "no session persistence outside print mode",
			mutate:  func(c *runtime.CLI) { c.NoSessionPersistence = true },
			wantErr: "--no-session-persistence can only be used with --print mode",
		},
		{
			name:    "invalid session id",
			mutate:  func(c *runtime.CLI) { c.SessionID = strPtr("not-a-uuid") },
			wantErr: "Invalid session ID. Must be a valid UUID.",
		},
		{
			name: "stream json without verbose",
			mutate: func(c *runtime.CLI) {
				c.Print = true
				c.OutputFormat = output.FormatStreamJSON
			},
			wantErr: "When using --print, --output-format=stream-json requires --verbose",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := runtime.NewCLI()
			tt.mutate(cli)
			err := cli.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}

	t.Run("valid defaults", func(t *testing.T) {
		require.NoError(t, runtime.NewCLI().Validate())
	})

	t.Run("stream json with verbose", func(t *testing.T) {
		cli := runtime.NewCLI()
		cli.Print = true
		cli.OutputFormat = output.FormatStreamJSON
		cli.Verbose = true
		require.NoError(t, cli.Validate())
	})
}

func TestBuilderRejectsUnsafeBypass(t *testing.T) {
	cli := runtime.NewCLI()
	cli.DangerouslySkipPermissions = true
	_, err := runtime.NewBuilder(cli)
	require.Error(t, err)
	assert.Equal(t, permission.BypassErrorMessage, err.Error())

	cli.AllowDangerouslySkipPermissions = true
	_, err = runtime.NewBuilder(cli)
	require.NoError(t, err)
}

func TestContextPrecedence(t *testing.T) {
	cfg := &scenario.Config{}
	cfg.DefaultModel = strPtr("claude-sonnet-4-5-20250929")
	cfg.SessionID = strPtr("11111111-1111-1111-1111-111111111111")
	cfg.WorkingDirectory = strPtr("/tmp/scenario-wd")
	cfg.ProjectPath = strPtr("/tmp/scenario-project")
	cfg.ClaudeVersion = strPtr("9.9.9")
	cfg.UserName = strPtr("Sam")
	cfg.PermissionMode = strPtr("plan")
	cfg.LaunchTimestamp = strPtr("2026-03-01T12:00:00Z")

	t.Run("scenario fills defaults", func(t *testing.T) {
		ctx := runtime.NewContext(cfg, runtime.NewCLI(), nil)
		assert.Equal(t, "claude-sonnet-4-5-20250929", ctx.Model)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", ctx.SessionID.String())
		assert.Equal(t, "/tmp/scenario-wd", ctx.WorkingDirectory)
		assert.Equal(t, "/tmp/scenario-project", ctx.ProjectPath)
		assert.Equal(t, "9.9.9", ctx.ClaudeVersion)
		assert.Equal(t, "Sam", ctx.UserName)
		assert.Equal(t, permission.ModePlan, ctx.PermissionMode)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ctx.LaunchTimestamp.UTC())
		assert.True(t, ctx.Trusted)
	})

	t.Run("cli overrides scenario", func(t *testing.T) {
		cli := runtime.NewCLI()
		cli.Model = "claude-haiku-4-5-20251001"
		cli.SessionID = strPtr("22222222-2222-2222-2222-222222222222")
		cli.Cwd = strPtr("/tmp/cli-wd")
		ctx := runtime.NewContext(cfg, cli, nil)
		assert.Equal(t, "claude-haiku-4-5-20251001", ctx.Model)
		assert.Equal(t, "22222222-2222-2222-2222-222222222222", ctx.SessionID.String())
		assert.Equal(t, "/tmp/cli-wd", ctx.WorkingDirectory)
		// Project path still follows the scenario.
		assert.Equal(t, "/tmp/scenario-project", ctx.ProjectPath)
	})

	t.Run("defaults without scenario", func(t *testing.T) {
		ctx := runtime.NewContext(nil, runtime.NewCLI(), nil)
		assert.Equal(t, scenario.DefaultModel, ctx.Model)
		assert.Equal(t, scenario.DefaultClaudeVersion, ctx.ClaudeVersion)
		assert.Equal(t, scenario.DefaultUserName, ctx.UserName)
		assert.Equal(t, permission.ModeDefault, ctx.PermissionMode)
		assert.True(t, ctx.Trusted)
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", ctx.SessionID.String())
	})

	t.Run("untrusted scenario", func(t *testing.T) {
		untrusted := false
		cfg2 := &scenario.Config{}
		cfg2.Trusted = &untrusted
		ctx := runtime.NewContext(cfg2, runtime.NewCLI(), nil)
		assert.False(t, ctx.Trusted)
	})
}

func TestExecuteWithoutScenario(t *testing.T) {
	rt := buildRuntime(t, runtime.NewCLI())
	result, err := rt.Execute(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello! I'm Claudeless!", result.ResponseText())
	assert.Nil(t, result.Failure)
	assert.Empty(t, result.ToolResults)
}

func TestExecuteMatchesScenario(t *testing.T) {
	path := writeScenario(t, `{
		"default_response": "fallback",
		"responses": [
			{"pattern": "deploy", "response": "Deploying now"}
		]
	}`)
	cli := runtime.NewCLI()
	cli.Scenario = &path
	rt := buildRuntime(t, cli)

	result, err := rt.Execute(context.Background(), "please deploy the service")
	require.NoError(t, err)
	assert.Equal(t, "Deploying now", result.ResponseText())

	result, err = rt.Execute(context.Background(), "something else")
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.ResponseText())
}

func TestExecuteToolCallsRecordsSession(t *testing.T) {
	path := writeScenario(t, `{
		"responses": [
			{
				"pattern": "list",
				"response": {
					"text": "Listing files",
					"tool_calls": [
						{"tool": "Bash", "input": {"command": "ls"}, "result": "a.txt\nb.txt"}
					]
				}
			}
		],
		"tool_execution": {"mode": "mock"}
	}`)
	cli := runtime.NewCLI()
	cli.Scenario = &path
	rt := buildRuntime(t, cli)

	result, err := rt.Execute(context.Background(), "list the files")
	require.NoError(t, err)
	require.Len(t, result.ToolResults, 1)
	assert.Equal(t, "toolu_00000000", result.ToolResults[0].ToolUseID)
	text, ok := result.ToolResults[0].Text()
	require.True(t, ok)
	assert.Equal(t, "a.txt\nb.txt", text)

	require.NotNil(t, rt.StateWriter())
	data, err := os.ReadFile(rt.StateWriter().SessionPath())
	require.NoError(t, err)
	session := string(data)
	assert.Contains(t, session, `"tool_use"`)
	assert.Contains(t, session, `"toolu_00000000"`)
	assert.Contains(t, session, "Done! The requested operation has been completed successfully.")
}

func TestExecuteScenarioFailure(t *testing.T) {
	path := writeScenario(t, `{
		"responses": [
			{"pattern": "broken", "failure": {"type": "auth_error", "message": "Bad key"}}
		]
	}`)
	cli := runtime.NewCLI()
	cli.Scenario = &path
	rt := buildRuntime(t, cli)

	result, err := rt.Execute(context.Background(), "broken request")
	require.NoError(t, err)
	require.NotNil(t, result.Failure)
	assert.Equal(t, scenario.FailureAuthError, result.Failure.Type)

	data, err := os.ReadFile(rt.StateWriter().SessionPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bad key")
	assert.Contains(t, string(data), "authentication_error")
}

func TestPrintModeText(t *testing.T) {
	scenarioPath := writeScenario(t, `{
		"responses": [
			{"pattern": "deploy", "response": "Deploying now"}
		]
	}`)
	capturePath := filepath.Join(t.TempDir(), "capture.jsonl")

	cli := runtime.NewCLI()
	cli.Print = true
	cli.Prompt = strPtr("deploy it")
	cli.Scenario = &scenarioPath
	cli.Capture = &capturePath
	rt := buildRuntime(t, cli)

	var stdout, stderr bytes.Buffer
	code, err := rt.ExecutePrintMode(context.Background(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, scenario.ExitSuccess, code)
	assert.Equal(t, "Deploying now\n", stdout.String())
	assert.Empty(t, stderr.String())

	require.NotNil(t, rt.CaptureLog())
	responses := rt.CaptureLog().FindResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "Deploying now", responses[0].Outcome.Text)

	// The print-mode queue marker lands in the session log.
	data, err := os.ReadFile(rt.StateWriter().SessionPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "queue-operation")
}

func TestPrintModeRequiresPrompt(t *testing.T) {
	cli := runtime.NewCLI()
	cli.Print = true
	rt := buildRuntime(t, cli)

	var stdout, stderr bytes.Buffer
	code, err := rt.ExecutePrintMode(context.Background(), &stdout, &stderr)
	assert.Equal(t, scenario.ExitError, code)
	require.Error(t, err)
	assert.Equal(t,
		"Input must be provided either through stdin or as a prompt argument when using --print",
		err.Error())
}

func TestPrintModeFailureInjection(t *testing.T) {
	cli := runtime.NewCLI()
	cli.Print = true
	cli.Prompt = strPtr("anything")
	cli.Failure = strPtr("auth-error")
	rt := buildRuntime(t, cli)

	var stdout, stderr bytes.Buffer
	code, err := rt.ExecutePrintMode(context.Background(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, scenario.ExitError, code)
	assert.Empty(t, stdout.String())

	var envelope struct {
		Type  string `json:"type"`
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &envelope))
	assert.Equal(t, "error", envelope.Type)
	assert.Equal(t, "authentication_error", envelope.Error.Type)
	assert.Equal(t, "Invalid API key", envelope.Error.Message)
}

func TestPrintModePartialResponse(t *testing.T) {
	cli := runtime.NewCLI()
	cli.Print = true
	cli.Prompt = strPtr("anything")
	cli.Failure = strPtr("partial-response")
	rt := buildRuntime(t, cli)

	var stdout, stderr bytes.Buffer
	code, err := rt.ExecutePrintMode(context.Background(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, scenario.ExitPartial, code)
	assert.Equal(t, "I was going to say...", stderr.String())
}

func TestStopHookContinuation(t *testing.T) {
	scenarioPath := writeScenario(t, `{
		"responses": [
			{"pattern": "start", "response": "First answer"},
			{"pattern": "keep going", "response": "Second answer"}
		]
	}`)

	// Blocks the first stop, lets the continuation finish.
	hook := `if grep -q '"stop_hook_active":true'; then
  echo '{}'
else
  echo '{"data":{"decision":"block","reason":"keep going"}}'
fi`
	settings := map[string]any{
		"hooks": []map[string]any{
			{
				"matcher": map[string]any{"event": "Stop"},
				"hooks": []map[string]any{
					{"command_type": "bash", "command": hook},
				},
			},
		},
	}
	settingsJSON, err := json.Marshal(settings)
	require.NoError(t, err)

	cli := runtime.NewCLI()
	cli.Print = true
	cli.Prompt = strPtr("start the work")
	cli.Scenario = &scenarioPath
	cli.Settings = []string{string(settingsJSON)}
	rt := buildRuntime(t, cli)

	var stdout, stderr bytes.Buffer
	code, err := rt.ExecutePrintMode(context.Background(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, scenario.ExitSuccess, code)

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	assert.Equal(t, []string{"First answer", "Second answer"}, lines)
	assert.True(t, rt.StopHookActive())

	// Only the original prompt reaches the capture log; hook
	// continuations are internal turns.
	if log := rt.CaptureLog(); log != nil {
		assert.Equal(t, 1, log.Len())
	}
}

func TestToolModeFlagOverridesScenario(t *testing.T) {
	path := writeScenario(t, `{
		"responses": [
			{
				"pattern": "run",
				"response": {
					"text": "",
					"tool_calls": [{"tool": "Bash", "input": {"command": "ls"}, "result": "ok"}]
				}
			}
		],
		"tool_execution": {"mode": "mock"}
	}`)
	cli := runtime.NewCLI()
	cli.Scenario = &path
	cli.ToolMode = strPtr(scenario.ToolModeDisabled)
	rt := buildRuntime(t, cli)

	result, err := rt.Execute(context.Background(), "run it")
	require.NoError(t, err)
	assert.Empty(t, result.ToolResults)
}

func TestInteractivePendingPermission(t *testing.T) {
	path := writeScenario(t, `{
		"responses": [
			{
				"pattern": "edit",
				"response": {
					"text": "Editing",
					"tool_calls": [{"tool": "Edit", "input": {"file_path": "/tmp/x"}, "result": "done"}]
				}
			}
		],
		"tool_execution": {"mode": "mock"}
	}`)
	cli := runtime.NewCLI()
	cli.Scenario = &path
	rt := buildRuntime(t, cli)
	rt.SetInteractive(true)

	result, err := rt.Execute(context.Background(), "edit the file")
	require.NoError(t, err)
	require.NotNil(t, result.PendingPermission)
	assert.Equal(t, "Edit", result.PendingPermission.ToolCall.Tool)
	assert.Equal(t, "toolu_00000000", result.PendingPermission.ToolUseID)
	assert.Empty(t, result.ToolResults)
	assert.Nil(t, result.HookContinuation)
}
