// Package hooks runs user-supplied hook scripts at session lifecycle
// points. Scripts receive a flat JSON message on stdin and reply with a
// JSON response on stdout; an empty reply means proceed.
package hooks

import "encoding/json"

// Event identifies when a hook fires.
type Event string

const (
	EventPreToolExecution  Event = "pre_tool_execution"
	EventPostToolExecution Event = "post_tool_execution"
	EventNotification      Event = "notification"
	EventPermissionRequest Event = "permission_request"
	EventSessionStart      Event = "session_start"
	EventSessionEnd        Event = "session_end"
	EventPromptSubmit      Event = "prompt_submit"
	EventPreCompact        Event = "pre_compact"
	EventStop              Event = "stop"
)

// Notification types passed as the sub-event for Notification hooks.
const (
	NotificationPermissionPrompt  = "permission_prompt"
	NotificationIdlePrompt        = "idle_prompt"
	NotificationElicitationDialog = "elicitation_dialog"
	NotificationAuthSuccess       = "auth_success"
)

// CompactionTrigger says what started a compaction.
type CompactionTrigger string

const (
	CompactionManual CompactionTrigger = "manual"
	CompactionAuto   CompactionTrigger = "auto"
)

// Message is a hook invocation: the event, the session, and the
// event-specific payload fields.
type Message struct {
	Event     Event
	SessionID string

	// Tool execution and permission fields.
	ToolName   string
	ToolInput  json.RawMessage
	ToolOutput *string
	Action     string
	Context    json.RawMessage

	// Notification fields.
	NotificationType string
	Title            string
	Text             string

	// Session / prompt / compaction / stop fields.
	ProjectPath        *string
	Prompt             string
	Trigger            CompactionTrigger
	CustomInstructions *string
	StopHookActive     bool
}

// ToolExecution builds a pre or post tool execution message.
func ToolExecution(sessionID string, event Event, toolName string, toolInput json.RawMessage, toolOutput *string) Message {
	return Message{
		Event:      event,
		SessionID:  sessionID,
		ToolName:   toolName,
		ToolInput:  toolInput,
		ToolOutput: toolOutput,
	}
}

// Notification builds a notification message.
func Notification(sessionID, notificationType, title, text string) Message {
	return Message{
		Event:            EventNotification,
		SessionID:        sessionID,
		NotificationType: notificationType,
		Title:            title,
		Text:             text,
	}
}

// Permission builds a permission request message.
func Permission(sessionID, toolName, action string, context json.RawMessage) Message {
	return Message{
		Event:     EventPermissionRequest,
		SessionID: sessionID,
		ToolName:  toolName,
		Action:    action,
		Context:   context,
	}
}

// Session builds a session lifecycle message.
func Session(sessionID string, event Event, projectPath *string) Message {
	return Message{Event: event, SessionID: sessionID, ProjectPath: projectPath}
}

// PromptSubmit builds a prompt submission message.
func PromptSubmit(sessionID, prompt string) Message {
	return Message{Event: EventPromptSubmit, SessionID: sessionID, Prompt: prompt}
}

// Compaction builds a pre-compaction message.
func Compaction(sessionID string, trigger CompactionTrigger, customInstructions *string) Message {
	return Message{
		Event:              EventPreCompact,
		SessionID:          sessionID,
		Trigger:            trigger,
		CustomInstructions: customInstructions,
	}
}

// Stop builds a stop message. stopHookActive is true when the turn is
// itself a stop-hook continuation, so scripts can avoid loops.
func Stop(sessionID string, stopHookActive bool) Message {
	return Message{Event: EventStop, SessionID: sessionID, StopHookActive: stopHookActive}
}

// WireJSON is the flat object written to a hook script's stdin. Event
// and session are always present; the rest depends on the event.
func (m Message) WireJSON() map[string]any {
	wire := map[string]any{
		"hook_event_name": string(m.Event),
		"session_id":      m.SessionID,
	}
	switch m.Event {
	case EventPreToolExecution, EventPostToolExecution:
		wire["tool_name"] = m.ToolName
		wire["tool_input"] = rawOrNull(m.ToolInput)
		if m.ToolOutput != nil {
			wire["tool_output"] = *m.ToolOutput
		}
	case EventNotification:
		wire["notification_type"] = m.NotificationType
		wire["title"] = m.Title
		wire["message"] = m.Text
	case EventPermissionRequest:
		wire["tool_name"] = m.ToolName
		wire["action"] = m.Action
		wire["context"] = rawOrNull(m.Context)
	case EventSessionStart, EventSessionEnd:
		if m.ProjectPath != nil {
			wire["project_path"] = *m.ProjectPath
		}
	case EventPromptSubmit:
		wire["prompt"] = m.Prompt
	case EventPreCompact:
		wire["trigger"] = string(m.Trigger)
		if m.CustomInstructions != nil {
			wire["custom_instructions"] = *m.CustomInstructions
		}
	case EventStop:
		wire["stop_hook_active"] = m.StopHookActive
	}
	return wire
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// matchSubject is the value a matcher pattern filters on, if the event
// has one.
func (m Message) matchSubject() (string, bool) {
	switch m.Event {
	case EventNotification:
		return m.NotificationType, true
	case EventPreToolExecution, EventPostToolExecution:
		return m.ToolName, true
	}
	return "", false
}

// Response is what a hook script writes to stdout. Missing fields take
// their defaults, so `{}` and empty output both mean proceed.
type Response struct {
	Proceed         bool            `json:"proceed"`
	ModifiedPayload json.RawMessage `json:"modified_payload,omitempty"`
	Error           string          `json:"error,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON defaults proceed to true when the field is absent.
func (r *Response) UnmarshalJSON(data []byte) error {
	type plain Response
	p := plain{Proceed: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Response(p)
	return nil
}

// Proceed is the default response.
func Proceed() Response {
	return Response{Proceed: true}
}

// Block builds a proceed=false response carrying a reason.
func Block(reason string) Response {
	return Response{Proceed: false, Error: reason}
}

// StopResponse is the stop-hook reply shape. A "block" decision
// continues the conversation with the reason as the next prompt.
type StopResponse struct {
	Decision string  `json:"decision"`
	Reason   *string `json:"reason,omitempty"`
}

// UnmarshalJSON defaults the decision to "allow".
func (r *StopResponse) UnmarshalJSON(data []byte) error {
	type plain StopResponse
	p := plain{Decision: "allow"}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = StopResponse(p)
	return nil
}

// Blocked reports whether the stop hook wants the conversation to
// continue.
func (r StopResponse) Blocked() bool {
	return r.Decision == "block"
}

// ParseStopResponse reads a stop-hook reply from a generic hook
// response's raw data. The response's Data field holds the decision
// object when the script emitted one.
func ParseStopResponse(raw []byte) (StopResponse, error) {
	var r StopResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return StopResponse{}, err
	}
	return r, nil
}
