package state_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"claudeless/pkg/clock"
	"claudeless/pkg/state"
)

func newTestWriter(t *testing.T) *state.Writer {
	t.Helper()
	dir := state.NewDir(t.TempDir())
	if err := dir.Initialize(); err != nil {
		t.Fatal(err)
	}
	launch := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return state.NewWriterAt(dir,
		"11111111-2222-3333-4444-555555555555", "/work/proj",
		launch, "claude-opus-4-5-20251101", "/work/proj", "2.1.12",
		clock.NewFake(launch))
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	defer f.Close()
	var lines []map[string]any
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad JSONL line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestRecordTurnWritesUserAndAssistant(t *testing.T) {
	w := newTestWriter(t)
	if err := w.RecordTurn("hello", "Hi!"); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}

	lines := readLines(t, w.SessionPath())
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	user := lines[0]
	if user["type"] != "user" || user["userType"] != "external" {
		t.Errorf("user line = %v", user)
	}
	if user["parentUuid"] != nil {
		t.Errorf("user parentUuid = %v, want null", user["parentUuid"])
	}
	msg := user["message"].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "hello" {
		t.Errorf("user message = %v", msg)
	}

	asst := lines[1]
	if asst["type"] != "assistant" {
		t.Errorf("assistant line = %v", asst)
	}
	if asst["parentUuid"] != user["uuid"] {
		t.Error("assistant not parented to user message")
	}
	am := asst["message"].(map[string]any)
	if !strings.HasPrefix(am["id"].(string), "msg_") {
		t.Errorf("message id = %v", am["id"])
	}
	if !strings.HasPrefix(asst["requestId"].(string), "req_") {
		t.Errorf("requestId = %v", asst["requestId"])
	}
	usage := am["usage"].(map[string]any)
	if usage["service_tier"] != "standard" {
		t.Errorf("usage = %v", usage)
	}
	if _, ok := usage["cache_creation"].(map[string]any); !ok {
		t.Error("usage missing cache_creation")
	}
}

func TestRecordTurnCountsTwoMessages(t *testing.T) {
	w := newTestWriter(t)
	if err := w.RecordTurn("first prompt", "reply"); err != nil {
		t.Fatal(err)
	}

	idx, err := state.LoadSessionsIndex(filepath.Join(w.ProjectDir(), "sessions-index.json"))
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	if idx.Version != 1 || idx.Len() != 1 {
		t.Fatalf("index = %+v", idx)
	}
	entry := idx.Get(w.SessionID())
	if entry == nil {
		t.Fatal("missing index entry")
	}
	if entry.MessageCount != 2 {
		t.Errorf("messageCount = %d, want 2", entry.MessageCount)
	}
	if entry.FirstPrompt != "first prompt" {
		t.Errorf("firstPrompt = %q", entry.FirstPrompt)
	}
	if entry.IsSidechain {
		t.Error("isSidechain = true")
	}
}

func TestIndexUpdatePreservesIdentityFields(t *testing.T) {
	idx := state.NewSessionsIndex()
	idx.AddOrUpdate(state.IndexEntry{
		SessionID: "s1", FullPath: "/p/s1.jsonl", FileMtime: 1000,
		FirstPrompt: "original", MessageCount: 2,
		Created: "2025-01-15T10:00:00Z", Modified: "2025-01-15T10:05:00Z",
	})
	idx.AddOrUpdate(state.IndexEntry{
		SessionID: "s1", FullPath: "/other/path.jsonl", FileMtime: 2000,
		FirstPrompt: "changed", MessageCount: 4,
		Created: "2026-01-01T00:00:00Z", Modified: "2025-01-15T10:10:00Z",
	})
	if idx.Len() != 1 {
		t.Fatalf("len = %d", idx.Len())
	}
	entry := idx.Get("s1")
	if entry.FileMtime != 2000 || entry.MessageCount != 4 || entry.Modified != "2025-01-15T10:10:00Z" {
		t.Errorf("mutable fields not updated: %+v", entry)
	}
	if entry.FirstPrompt != "original" || entry.Created != "2025-01-15T10:00:00Z" || entry.FullPath != "/p/s1.jsonl" {
		t.Errorf("identity fields changed: %+v", entry)
	}
}

func TestToolCallTranscriptShape(t *testing.T) {
	w := newTestWriter(t)
	userUUID, err := w.RecordUserMessage("run the tool")
	if err != nil {
		t.Fatal(err)
	}
	asstUUID, err := w.RecordAssistantToolUse(userUUID, []state.ContentBlock{
		state.ToolUseBlock("toolu_00000001", "Bash", json.RawMessage(`{"command":"ls"}`)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.RecordToolResult("toolu_00000001", "file.txt", asstUUID, json.RawMessage(`{"stdout":"file.txt"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := w.RecordAssistantResponseFinal(userUUID, "Done! The requested operation has been completed successfully."); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, w.SessionPath())
	// user, assistant tool_use, user tool_result, result record, final assistant
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}

	toolUse := lines[1]["message"].(map[string]any)
	content := toolUse["content"].([]any)[0].(map[string]any)
	if content["type"] != "tool_use" || content["name"] != "Bash" {
		t.Errorf("tool_use block = %v", content)
	}

	toolResult := lines[2]
	if toolResult["type"] != "user" {
		t.Errorf("tool result line type = %v", toolResult["type"])
	}
	if toolResult["sourceToolAssistantUUID"] != asstUUID {
		t.Error("sourceToolAssistantUUID mismatch")
	}
	trc := toolResult["message"].(map[string]any)["content"].([]any)[0].(map[string]any)
	if trc["type"] != "tool_result" || trc["tool_use_id"] != "toolu_00000001" {
		t.Errorf("tool_result content = %v", trc)
	}

	result := lines[3]
	if result["type"] != "result" || result["toolUseId"] != "toolu_00000001" {
		t.Errorf("result record = %v", result)
	}

	final := lines[4]["message"].(map[string]any)
	if final["stop_reason"] != "end_turn" {
		t.Errorf("stop_reason = %v", final["stop_reason"])
	}
}

func TestQueueOperationLine(t *testing.T) {
	w := newTestWriter(t)
	if err := w.WriteQueueOperation(); err != nil {
		t.Fatal(err)
	}
	lines := readLines(t, w.SessionPath())
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0]["type"] != "queue-operation" || lines[0]["operation"] != "dequeue" {
		t.Errorf("line = %v", lines[0])
	}
	if lines[0]["sessionId"] != w.SessionID() {
		t.Errorf("sessionId = %v", lines[0]["sessionId"])
	}
}

func TestRecordError(t *testing.T) {
	w := newTestWriter(t)
	errType := "rate_limit_error"
	retry := int64(30)
	if err := w.RecordError("Rate limited. Retry after 30 seconds.", &errType, &retry, 50); err != nil {
		t.Fatal(err)
	}
	lines := readLines(t, w.SessionPath())
	line := lines[0]
	if line["type"] != "result" || line["subtype"] != "error" || line["isError"] != true {
		t.Errorf("error line = %v", line)
	}
	if line["errorType"] != "rate_limit_error" || line["retryAfter"] != float64(30) {
		t.Errorf("error fields = %v", line)
	}
	if line["durationMs"] != float64(50) {
		t.Errorf("durationMs = %v", line["durationMs"])
	}
}

func TestWriteTodosClaudeFormat(t *testing.T) {
	w := newTestWriter(t)
	items := []state.TodoItem{
		state.NewTodo("Build project", "Building project"),
		{Content: "Run tests", Status: state.TodoCompleted, ActiveForm: "Running tests"},
	}
	if err := w.WriteTodos(items); err != nil {
		t.Fatal(err)
	}

	base := filepath.Base(w.TodoPath())
	want := w.SessionID() + "-agent-" + w.SessionID() + ".json"
	if base != want {
		t.Errorf("todo file = %s, want %s", base, want)
	}

	loaded, err := state.LoadTodos(w.TodoPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].ActiveForm != "Building project" || loaded[1].Status != "completed" {
		t.Errorf("loaded = %+v", loaded)
	}

	data, _ := os.ReadFile(w.TodoPath())
	if !strings.Contains(string(data), `"activeForm"`) {
		t.Errorf("todo file not in camelCase: %s", data)
	}
}

func TestCreatePlanGeneratesWordName(t *testing.T) {
	w := newTestWriter(t)
	name, err := w.CreatePlan("# Plan\n\nDo the thing.")
	if err != nil {
		t.Fatal(err)
	}
	if parts := strings.Split(name, "-"); len(parts) != 3 {
		t.Errorf("plan name = %q, want adjective-verb-noun", name)
	}
	plans := state.NewPlans(w.StateDir().PlansDir())
	if !plans.Exists(name) {
		t.Error("plan file missing")
	}
	content, err := plans.Read(name)
	if err != nil || !strings.Contains(content, "Do the thing.") {
		t.Errorf("plan content = %q err=%v", content, err)
	}
}
