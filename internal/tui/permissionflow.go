package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"claudeless/pkg/state"
)

// confirmPermission resolves the open permission dialog according to
// the selected option.
func (m *Model) confirmPermission() {
	perm := m.perm
	m.perm = nil
	m.mode = modeInput
	if perm == nil {
		return
	}

	toolName := perm.dialog.toolDisplayName()
	granted := perm.dialog.selected == selectYes || perm.dialog.selected == selectYesSession

	if writer := m.rt.StateWriter(); writer != nil &&
		m.display.pendingAssistantUUID != "" && perm.toolUseID != "" {
		var content string
		var resultJSON json.RawMessage
		if granted {
			content = fmt.Sprintf("[Permission granted for %s]", toolName)
			resultJSON = json.RawMessage(`{"success":true}`)
		} else {
			content = fmt.Sprintf("[Permission denied for %s]", toolName)
			resultJSON = json.RawMessage(`{"success":false,"denied":true}`)
		}
		if _, err := writer.RecordToolResult(perm.toolUseID, content, m.display.pendingAssistantUUID, resultJSON); err != nil {
			log.Warn().Err(err).Msg("record permission result")
		}
	}
	m.display.pendingAssistantUUID = ""
	m.display.pendingPostGrantDisplay = ""

	switch perm.dialog.selected {
	case selectYes:
		m.display.responseContent += fmt.Sprintf("\n[Permission granted for %s]\n", toolName)
	case selectYesSession:
		if key := sessionGrantKey(&perm.dialog); key != "" {
			m.sessionGrants[key] = struct{}{}
		}
		m.display.responseContent += fmt.Sprintf("\n[Permission granted for session: %s]\n", toolName)
	case selectNo:
		m.display.responseContent += fmt.Sprintf("\n[Permission denied for %s]\n", toolName)
	}
}

// showPermissionDialog routes a pending tool call through bypass and
// session grants before falling back to the interactive dialog.
// pendingUserUUID ties the recorded tool_use to the turn's user
// message; it is empty for shell commands that never reached the
// runtime.
func (m *Model) showPermissionDialog(dialog *permissionDialog, pendingUserUUID *string) tea.Cmd {
	toolName := dialog.toolDisplayName()
	writer := m.rt.StateWriter()
	userUUID := ""
	if pendingUserUUID != nil {
		userUUID = *pendingUserUUID
	}

	if m.permissionMode.AllowsAll() {
		if writer != nil && userUUID != "" {
			toolUseID, content := buildToolUseContent(dialog)
			if assistantUUID, err := writer.RecordAssistantToolUse(userUUID, content); err == nil {
				resultContent := fmt.Sprintf("[Permission auto-granted (bypass): %s]", toolName)
				if _, err := writer.RecordToolResult(toolUseID, resultContent, assistantUUID,
					json.RawMessage(`{"success":true,"auto_granted":true}`)); err != nil {
					log.Warn().Err(err).Msg("record bypass grant")
				}
			}
		}
		m.display.responseContent += fmt.Sprintf("\n⏺ %s(%s)\n", toolName, dialog.primaryArg())
		m.mode = modeInput
		return nil
	}

	if _, granted := m.sessionGrants[sessionGrantKey(dialog)]; granted {
		if writer != nil && userUUID != "" {
			toolUseID, content := buildToolUseContent(dialog)
			if assistantUUID, err := writer.RecordAssistantToolUse(userUUID, content); err == nil {
				resultContent := fmt.Sprintf("[Permission auto-granted (session): %s]", toolName)
				if _, err := writer.RecordToolResult(toolUseID, resultContent, assistantUUID,
					json.RawMessage(`{"success":true,"auto_granted":true}`)); err != nil {
					log.Warn().Err(err).Msg("record session grant")
				}
			}
		}
		m.display.responseContent += fmt.Sprintf("\n[Permission auto-granted (session): %s]\n", toolName)
		m.mode = modeInput
		return nil
	}

	toolUseID := ""
	if writer != nil && userUUID != "" {
		id, content := buildToolUseContent(dialog)
		if assistantUUID, err := writer.RecordAssistantToolUse(userUUID, content); err == nil {
			toolUseID = id
			m.display.pendingAssistantUUID = assistantUUID
		} else {
			log.Warn().Err(err).Msg("record pending tool use")
		}
	}

	m.perm = &permissionRequest{dialog: *dialog, toolUseID: toolUseID}
	m.mode = modePermission
	return nil
}

// primaryArg is the value shown next to the tool name in auto-grant
// output.
func (d *permissionDialog) primaryArg() string {
	switch {
	case d.isEdit:
		return d.editPath
	case d.isWrite:
		return d.writePath
	}
	return d.command
}

// buildToolUseContent shapes the pending call as a tool_use content
// block for the session log. IDs follow the API's toolu_ format.
func buildToolUseContent(d *permissionDialog) (string, []state.ContentBlock) {
	toolUseID := "toolu_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	var name string
	input := map[string]any{}
	switch {
	case d.isBash:
		name = "Bash"
		input["command"] = d.command
		if d.description != "" {
			input["description"] = d.description
		}
	case d.isEdit:
		name = "Edit"
		input["file_path"] = d.editPath
		input["changes"] = len(d.diff)
	case d.isWrite:
		name = "Write"
		input["file_path"] = d.writePath
		input["content"] = strings.Join(d.contentLines, "\n")
	}

	raw, err := json.Marshal(input)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	return toolUseID, []state.ContentBlock{state.ToolUseBlock(toolUseID, name, raw)}
}
