package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"claudeless/pkg/clock"
)

// Writer records a running session to the state directory: the
// per-project JSONL transcript, the sessions index, todos, and plans.
type Writer struct {
	dir            *Dir
	sessionID      string
	projectPath    string
	launchTime     time.Time
	model          string
	cwd            string
	version        string
	clk            clock.Clock
	firstPrompt    string
	hasFirstPrompt bool
	messageCount   int
}

// NewWriter resolves and initializes the state directory and returns a
// writer for the given session.
func NewWriter(sessionID, projectPath string, launchTime time.Time, model, cwd, version string, clk clock.Clock) (*Writer, error) {
	dir, err := Resolve()
	if err != nil {
		return nil, err
	}
	if err := dir.Initialize(); err != nil {
		return nil, err
	}
	return NewWriterAt(dir, sessionID, projectPath, launchTime, model, cwd, version, clk), nil
}

// NewWriterAt builds a writer on an already initialized directory.
func NewWriterAt(dir *Dir, sessionID, projectPath string, launchTime time.Time, model, cwd, version string, clk clock.Clock) *Writer {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Writer{
		dir:         dir,
		sessionID:   sessionID,
		projectPath: projectPath,
		launchTime:  launchTime,
		model:       model,
		cwd:         cwd,
		version:     version,
		clk:         clk,
	}
}

func (w *Writer) SessionID() string { return w.sessionID }
func (w *Writer) StateDir() *Dir    { return w.dir }

// ProjectDir returns the project directory this session records into.
func (w *Writer) ProjectDir() string {
	return w.dir.ProjectDir(w.projectPath)
}

// SessionPath returns the session transcript path.
func (w *Writer) SessionPath() string {
	return filepath.Join(w.ProjectDir(), w.sessionID+".jsonl")
}

// TodoPath returns the session's todo file path,
// {sessionId}-agent-{sessionId}.json.
func (w *Writer) TodoPath() string {
	return filepath.Join(w.dir.TodosDir(), fmt.Sprintf("%s-agent-%s.json", w.sessionID, w.sessionID))
}

func (w *Writer) ensureProjectDir() error {
	if err := os.MkdirAll(w.ProjectDir(), 0o700); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	return nil
}

func (w *Writer) onMessageWritten(prompt string) {
	if prompt != "" && !w.hasFirstPrompt {
		w.firstPrompt = prompt
		w.hasFirstPrompt = true
	}
	w.messageCount++
}

// WriteQueueOperation writes the dequeue line that opens a print-mode
// session.
func (w *Writer) WriteQueueOperation() error {
	if err := w.ensureProjectDir(); err != nil {
		return err
	}
	return AppendQueueOperation(w.SessionPath(), w.sessionID, "dequeue", w.clk.Now())
}

// RecordTurn appends a user/assistant pair for a simple text exchange.
func (w *Writer) RecordTurn(prompt, response string) error {
	if err := w.ensureProjectDir(); err != nil {
		return err
	}
	path := w.SessionPath()
	branch := GitBranch()
	ts := w.clk.Now()

	userUUID := uuid.NewString()
	userLine := UserMessageLine{
		Envelope: envelope(LineUser, userUUID, nil, w.sessionID, w.cwd, w.version, branch, ts),
		Message:  UserMessage{Role: RoleUser, Content: prompt},
	}
	if err := appendJSONLine(path, userLine); err != nil {
		return err
	}

	assistantLine := AssistantMessageLine{
		Envelope: envelope(LineAssistant, uuid.NewString(), &userUUID, w.sessionID, w.cwd, w.version, branch, ts),
		Message: AssistantMessage{
			Model:   w.model,
			ID:      "msg_" + simpleUUID(),
			Type:    messageTypeValue,
			Role:    RoleAssistant,
			Content: []ContentBlock{TextBlock(response)},
			Usage:   NewUsage(2, 1),
		},
		RequestID: "req_" + simpleUUID(),
	}
	if err := appendJSONLine(path, assistantLine); err != nil {
		return err
	}

	w.onMessageWritten(prompt)
	w.messageCount++
	return w.updateIndex()
}

// RecordUserMessage appends a user prompt and returns its UUID.
func (w *Writer) RecordUserMessage(prompt string) (string, error) {
	if err := w.ensureProjectDir(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	line := UserMessageLine{
		Envelope: envelope(LineUser, id, nil, w.sessionID, w.cwd, w.version, GitBranch(), w.clk.Now()),
		Message:  UserMessage{Role: RoleUser, Content: prompt},
	}
	if err := appendJSONLine(w.SessionPath(), line); err != nil {
		return "", err
	}
	w.onMessageWritten(prompt)
	return id, nil
}

// RecordAssistantResponse appends a text response and returns its UUID.
func (w *Writer) RecordAssistantResponse(parentUserUUID, response string) (string, error) {
	return w.recordAssistant(parentUserUUID, []ContentBlock{TextBlock(response)}, nil, true)
}

// RecordAssistantResponseFinal appends the end-of-turn response.
func (w *Writer) RecordAssistantResponseFinal(parentUserUUID, response string) (string, error) {
	stop := "end_turn"
	return w.recordAssistant(parentUserUUID, []ContentBlock{TextBlock(response)}, &stop, true)
}

// RecordAssistantToolUse appends an assistant message carrying tool_use
// blocks and returns its UUID.
func (w *Writer) RecordAssistantToolUse(parentUserUUID string, content []ContentBlock) (string, error) {
	stop := "tool_use"
	return w.recordAssistant(parentUserUUID, content, &stop, false)
}

func (w *Writer) recordAssistant(parentUUID string, content []ContentBlock, stopReason *string, updateIndex bool) (string, error) {
	if err := w.ensureProjectDir(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	line := AssistantMessageLine{
		Envelope: envelope(LineAssistant, id, &parentUUID, w.sessionID, w.cwd, w.version, GitBranch(), w.clk.Now()),
		Message: AssistantMessage{
			Model:      w.model,
			ID:         "msg_" + simpleUUID(),
			Type:       messageTypeValue,
			Role:       RoleAssistant,
			Content:    content,
			StopReason: stopReason,
			Usage:      NewUsage(2, 1),
		},
		RequestID: "req_" + simpleUUID(),
	}
	if err := appendJSONLine(w.SessionPath(), line); err != nil {
		return "", err
	}
	w.onMessageWritten("")
	if updateIndex {
		if err := w.updateIndex(); err != nil {
			return "", err
		}
	}
	return id, nil
}

// RecordToolResult appends the user-side tool result plus the
// standalone result record, and returns the result line's UUID.
func (w *Writer) RecordToolResult(toolUseID, content, assistantUUID string, toolUseResult json.RawMessage) (string, error) {
	if err := w.ensureProjectDir(); err != nil {
		return "", err
	}
	path := w.SessionPath()
	ts := w.clk.Now()
	id := uuid.NewString()
	if toolUseResult == nil {
		toolUseResult = json.RawMessage("null")
	}
	line := ToolResultMessageLine{
		Envelope: envelope(LineUser, id, &assistantUUID, w.sessionID, w.cwd, w.version, GitBranch(), ts),
		Message: ToolResultUserMessage{
			Role: RoleUser,
			Content: []ToolResultContent{{
				ToolUseID: toolUseID,
				Type:      "tool_result",
				Content:   content,
			}},
		},
		ToolUseResult:           toolUseResult,
		SourceToolAssistantUUID: assistantUUID,
	}
	if err := appendJSONLine(path, line); err != nil {
		return "", err
	}
	if err := AppendResult(path, toolUseID, content, ts); err != nil {
		return "", err
	}
	w.onMessageWritten("")
	return id, w.updateIndex()
}

// RecordError appends an injected failure to the transcript.
func (w *Writer) RecordError(errText string, errType *string, retryAfter *int64, durationMS int64) error {
	if err := w.ensureProjectDir(); err != nil {
		return err
	}
	return AppendError(w.SessionPath(), w.sessionID, errText, errType, retryAfter, durationMS, w.clk.Now())
}

// WriteTodos writes the session's todo list in Claude format.
func (w *Writer) WriteTodos(items []TodoItem) error {
	if err := os.MkdirAll(w.dir.TodosDir(), 0o700); err != nil {
		return fmt.Errorf("create todos dir: %w", err)
	}
	return SaveTodos(w.TodoPath(), items)
}

// CreatePlan writes a plan file and returns its generated name.
func (w *Writer) CreatePlan(content string) (string, error) {
	return NewPlans(w.dir.PlansDir()).Create(content)
}

func (w *Writer) updateIndex() error {
	indexPath := filepath.Join(w.ProjectDir(), "sessions-index.json")
	idx := NewSessionsIndex()
	if _, err := os.Stat(indexPath); err == nil {
		loaded, err := LoadSessionsIndex(indexPath)
		if err != nil {
			return err
		}
		idx = loaded
	}
	now := w.clk.Now()
	idx.AddOrUpdate(IndexEntry{
		SessionID:    w.sessionID,
		FullPath:     w.SessionPath(),
		FileMtime:    now.UnixMilli(),
		FirstPrompt:  w.firstPrompt,
		MessageCount: w.messageCount,
		Created:      w.launchTime.Format(time.RFC3339),
		Modified:     now.Format(time.RFC3339),
		GitBranch:    GitBranch(),
		ProjectPath:  w.projectPath,
		IsSidechain:  false,
	})
	return idx.Save(indexPath)
}

func simpleUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
