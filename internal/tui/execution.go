package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"claudeless/pkg/hooks"
	"claudeless/pkg/runtime"
	"claudeless/pkg/scenario"
)

// executeShellCommand runs a "! command" entry via the Bash tool path.
func (m *Model) executeShellCommand(command string) tea.Cmd {
	m.appendPreviousResponse()
	m.appendToConversation("❯ !", command)

	if m.permissionMode.AllowsAll() {
		m.display.conversationDisplay += fmt.Sprintf("\n\n⏺ Bash(%s)", command)
		return m.executeTurn(command)
	}

	m.mode = modeThinking
	m.display.responseContent = ""
	m.display.isCommandOutput = false
	m.display.spinnerFrame = 0
	m.display.spinnerVerb = randomSpinnerVerb()

	description := "Execute: " + command
	return m.showPermissionDialog(&permissionDialog{
		isBash:      true,
		command:     command,
		description: description,
	}, nil)
}

// processPrompt starts a new turn for the given prompt.
func (m *Model) processPrompt(prompt string) tea.Cmd {
	m.appendPreviousResponse()
	m.appendToConversation("❯", prompt)

	m.mode = modeThinking
	m.isCompacting = false
	m.display.responseContent = ""
	m.display.isCommandOutput = false
	m.display.spinnerFrame = 0
	m.display.spinnerVerb = randomSpinnerVerb()

	m.lastPrompt = prompt
	m.turnCount++

	return m.executeTurn(prompt)
}

// confirmElicitation collects answers and re-executes the turn with them.
func (m *Model) confirmElicitation() tea.Cmd {
	state := m.elicit
	m.elicit = nil
	if state == nil {
		return nil
	}
	m.mode = modeThinking

	answer := state.CollectAnswer()
	switch answer.kind {
	case "cancelled":
		m.display.responseContent = "User declined to answer questions"
		m.restoreInputState()
		return nil
	case "chat":
		summaries := make([]string, 0, len(state.questions))
		for _, q := range state.questions {
			summaries = append(summaries, fmt.Sprintf("- %q\n  (No answer provided)", q.Question))
		}
		m.display.responseContent = fmt.Sprintf(
			"The user wants to clarify these questions.\n    "+
				"This means they may have additional information, context or questions for you.\n    "+
				"Take their response into account and then reformulate the questions if appropriate.\n    "+
				"Start by asking them what they would like to clarify.\n\n    "+
				"Questions asked:\n%s",
			strings.Join(summaries, "\n"))
		m.restoreInputState()
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"questions": state.questions,
		"answers":   state.Answers(),
	})
	if err != nil {
		log.Error().Err(err).Msg("marshal elicitation answers")
		m.restoreInputState()
		return nil
	}
	return m.executeTurn(string(payload))
}

// cancelElicitation dismisses the dialog without answers.
func (m *Model) cancelElicitation() {
	m.elicit = nil
	m.display.responseContent = "User declined to answer questions"
	m.restoreInputState()
}

// confirmPlanApproval applies the plan decision and re-executes.
func (m *Model) confirmPlanApproval() tea.Cmd {
	state := m.plan
	m.plan = nil
	if state == nil {
		return nil
	}
	m.mode = modeThinking

	decision := state.Collect()
	switch decision.kind {
	case "cancelled":
		m.display.responseContent = "User rejected tool use"
		m.restoreInputState()
		return nil
	case "revised":
		payload, err := json.Marshal(map[string]any{"plan_feedback": decision.feedback})
		if err != nil {
			log.Error().Err(err).Msg("marshal plan feedback")
			m.restoreInputState()
			return nil
		}
		return m.executeTurn(string(payload))
	}

	payload, err := json.Marshal(map[string]any{
		"plan_approved": true,
		"approval_mode": decision.kind,
	})
	if err != nil {
		log.Error().Err(err).Msg("marshal plan approval")
		m.restoreInputState()
		return nil
	}
	return m.executeTurn(string(payload))
}

// cancelPlanApproval dismisses the plan dialog.
func (m *Model) cancelPlanApproval() {
	m.plan = nil
	m.display.responseContent = "User rejected tool use"
	m.restoreInputState()
}

// handleTurn consumes a finished turn from the runtime.
func (m *Model) handleTurn(msg turnMsg) tea.Cmd {
	if msg.err != nil {
		m.setupResponseDisplay("Error: " + msg.err.Error())
		m.restoreInputState()
		return nil
	}
	result := msg.result
	if result.Failure != nil {
		m.handleFailure(result.Failure)
		return nil
	}
	return m.handleTurnResult(result)
}

// handleFailure shows an injected failure as an error response.
func (m *Model) handleFailure(f *scenario.FailureSpec) {
	var message string
	switch f.Type {
	case scenario.FailureNetworkUnreachable:
		message = "Error: Network is unreachable"
	case scenario.FailureConnectionTimeout:
		message = fmt.Sprintf("Error: Connection timed out after %dms", f.AfterMS)
	case scenario.FailureAuthError:
		message = "Error: " + f.Message
	case scenario.FailureRateLimit:
		message = fmt.Sprintf("Error: Rate limited. Retry after %d seconds.", f.RetryAfter)
	case scenario.FailureOutOfCredits:
		message = "Error: No credits remaining"
	case scenario.FailurePartialResponse:
		message = "Partial response: " + f.PartialText
	case scenario.FailureMalformedJSON:
		message = "Malformed response: " + f.Raw
	default:
		message = "Error: " + f.Type
	}
	m.setupResponseDisplay(message)
	m.restoreInputState()
}

// handleTurnResult builds the display for a completed turn and routes
// any pending tool call to its dialog.
func (m *Model) handleTurnResult(result *runtime.TurnResult) tea.Cmd {
	toolCalls := result.Response.ToolCalls
	completedCount := len(result.ToolResults)

	m.recordToolHistory(toolCalls, result)

	completedParts := func() []string {
		var parts []string
		for i := 0; i < completedCount && i < len(toolCalls); i++ {
			parts = append(parts, formatCompletedToolDisplay(&toolCalls[i], toolResultText(result, i)))
		}
		return parts
	}

	if pending := result.PendingPermission; pending != nil {
		switch pending.ToolCall.Tool {
		case "ExitPlanMode":
			planPath := "~/.claude/plans/plan.md"
			if pending.ToolCall.Result != nil {
				if name, ok := strings.CutPrefix(*pending.ToolCall.Result, "Plan saved as "); ok {
					planPath = "~/.claude/plans/" + name
				}
			}
			m.plan = &planApprovalState{
				planContent:  parsePlanContent(pending.ToolCall.Input),
				planFilePath: planPath,
			}
			m.mode = modePlanApproval

			parts := completedParts()
			if text := result.ResponseText(); text != "" {
				parts = append(parts, wrapResponseParagraph(text, m.display.terminalWidth))
			}
			if len(parts) > 0 {
				m.setupResponseDisplay(joinDisplayParts(parts))
				m.mode = modePlanApproval
			}
			return m.fireNotification(hooks.NotificationElicitationDialog, hooks.NotificationElicitationDialog, "")

		case "AskUserQuestion":
			elicit, err := parseElicitationInput(pending.ToolCall.Input)
			if err != nil {
				log.Warn().Err(err).Msg("parse elicitation input")
				m.setupResponseDisplay("User declined to answer questions")
				m.restoreInputState()
				return nil
			}
			m.elicit = elicit
			m.mode = modeElicitation

			parts := completedParts()
			if text := result.ResponseText(); text != "" {
				parts = append(parts, wrapResponseParagraph(text, m.display.terminalWidth))
			}
			if len(parts) > 0 {
				m.setupResponseDisplay(joinDisplayParts(parts))
				m.mode = modeElicitation
			}
			return m.fireNotification(hooks.NotificationElicitationDialog, hooks.NotificationElicitationDialog, "")
		}

		if dialog := toolCallToPermissionDialog(&pending.ToolCall); dialog != nil {
			parts := completedParts()
			responseText := result.ResponseText()
			if responseText != "" {
				parts = append(parts, wrapResponseParagraph(responseText, m.display.terminalWidth))
			}
			// Bash shows its Running… display only when it is the sole
			// tool of the turn.
			if completedCount == 0 || pending.ToolCall.Tool != "Bash" {
				parts = append(parts, formatToolCallDisplay(&pending.ToolCall))
			}
			if display := joinDisplayParts(parts); display != "" {
				m.setupResponseDisplay(display)
			}

			postParts := completedParts()
			postParts = append(postParts, formatCompletedToolDisplay(&pending.ToolCall, pending.ToolCall.Result))
			if responseText != "" {
				postParts = append(postParts, wrapResponseParagraph(responseText, m.display.terminalWidth))
			}
			m.display.pendingPostGrantDisplay = joinDisplayParts(postParts)

			return m.showPermissionDialog(dialog, &pending.UserUUID)
		}
	}

	parts := completedParts()
	responseText := result.ResponseText()
	if responseText == "" && len(parts) == 0 {
		responseText = "I'm not sure how to help with that."
	}
	if responseText != "" {
		parts = append(parts, wrapResponseParagraph(responseText, m.display.terminalWidth))
	}

	display := "I'm not sure how to help with that."
	if len(parts) > 0 {
		display = joinDisplayParts(parts)
	}
	m.setupResponseDisplay(display)

	if result.HookContinuation != nil {
		m.pendingHookMessage = result.HookContinuation
		m.stopHookActive = true
		return nil
	}

	m.restoreInputState()
	return m.fireNotification(hooks.NotificationIdlePrompt, "Agent Idle", "Claude is waiting for input")
}

// recordToolHistory remembers executed tool calls for the /compact summary.
func (m *Model) recordToolHistory(toolCalls []scenario.ToolCallSpec, result *runtime.TurnResult) {
	for i := 0; i < len(result.ToolResults) && i < len(toolCalls); i++ {
		output := ""
		if text := toolResultText(result, i); text != nil {
			output = *text
		}
		m.toolHistory = append(m.toolHistory, toolCallRecord{
			tool:   toolCalls[i].Tool,
			input:  toolCalls[i].InputMap(),
			output: output,
		})
	}
}

func toolResultText(result *runtime.TurnResult, i int) *string {
	if i >= len(result.ToolResults) {
		return nil
	}
	if text, ok := result.ToolResults[i].Text(); ok {
		return &text
	}
	return nil
}

// appendPreviousResponse folds the last response into the history view.
func (m *Model) appendPreviousResponse() {
	if m.display.responseContent == "" || m.display.isCommandOutput {
		return
	}
	if m.display.conversationDisplay != "" {
		m.display.conversationDisplay += "\n\n"
	}
	m.display.conversationDisplay += "⏺ " + m.display.responseContent
}

func (m *Model) appendToConversation(prefix, content string) {
	if m.display.conversationDisplay != "" {
		m.display.conversationDisplay += "\n\n"
	}
	m.display.conversationDisplay += prefix + " " + content
}

// setupResponseDisplay shows a finished response and advances the token
// counters the same way streamed output would.
func (m *Model) setupResponseDisplay(responseText string) {
	m.mode = modeResponding
	m.display.spinnerFrame = 0
	m.display.spinnerVerb = randomSpinnerVerb()
	m.display.responseContent = responseText
	m.display.isStreaming = false

	outputTokens := len(responseText) / 4
	if outputTokens < 1 {
		outputTokens = 1
	}
	m.status.outputTokens += uint64(outputTokens)

	inputTokens := len(m.input.buffer) / 4
	if inputTokens < 1 {
		inputTokens = 1
	}
	m.status.inputTokens += uint64(inputTokens)
}

// restoreInputState returns to the prompt after a response settles.
func (m *Model) restoreInputState() {
	m.stopHookActive = false
	m.mode = modeInput
	m.input.RestoreStash()
}

// fireNotification delivers a Notification hook without blocking the UI.
func (m *Model) fireNotification(notificationType, title, text string) tea.Cmd {
	exec := m.rt.HookExecutor()
	if exec == nil || !exec.HasHooks(hooks.EventNotification) {
		return nil
	}
	sessionID := m.rt.SessionID()
	timeout := time.Duration(m.cfg.Timeouts.HookTimeoutMS) * time.Millisecond
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := hooks.Notification(sessionID, notificationType, title, text)
		if _, err := exec.Execute(ctx, msg); err != nil {
			log.Warn().Err(err).Str("type", notificationType).Msg("notification hook failed")
		}
		return nil
	}
}
