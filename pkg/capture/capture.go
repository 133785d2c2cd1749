// Package capture records per-invocation interactions for test
// assertions, optionally mirrored to a JSONL file.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Outcome kinds on the wire.
const (
	OutcomeResponse = "response"
	OutcomeFailure  = "failure"
	OutcomeNoMatch  = "no_match"
)

// Elapsed is the time since capture started, split the way the log
// file stores it.
type Elapsed struct {
	Secs  uint64 `json:"secs"`
	Nanos uint32 `json:"nanos"`
}

func elapsedSince(start time.Time, now time.Time) Elapsed {
	d := now.Sub(start)
	if d < 0 {
		d = 0
	}
	return Elapsed{Secs: uint64(d / time.Second), Nanos: uint32(d % time.Second)}
}

// Args are the CLI arguments an invocation arrived with.
type Args struct {
	Prompt               *string  `json:"prompt"`
	Model                string   `json:"model"`
	OutputFormat         string   `json:"output_format"`
	PrintMode            bool     `json:"print_mode"`
	ContinueConversation bool     `json:"continue_conversation"`
	Resume               *string  `json:"resume"`
	AllowedTools         []string `json:"allowed_tools"`
	Cwd                  *string  `json:"cwd"`
}

// Outcome is what the invocation produced. Exactly one of the variant
// field sets is populated, selected by Type.
type Outcome struct {
	Type string `json:"type"`

	// Response fields.
	Text        string  `json:"text,omitempty"`
	MatchedRule *string `json:"matched_rule,omitempty"`
	DelayMS     uint64  `json:"delay_ms,omitempty"`

	// Failure fields.
	FailureType string `json:"failure_type,omitempty"`
	Message     string `json:"message,omitempty"`

	// NoMatch fields.
	UsedDefault bool `json:"used_default,omitempty"`
}

// ResponseOutcome builds a response outcome.
func ResponseOutcome(text string, matchedRule *string, delayMS uint64) Outcome {
	return Outcome{Type: OutcomeResponse, Text: text, MatchedRule: matchedRule, DelayMS: delayMS}
}

// FailureOutcome builds a failure outcome.
func FailureOutcome(failureType, message string) Outcome {
	return Outcome{Type: OutcomeFailure, FailureType: failureType, Message: message}
}

// NoMatchOutcome builds a no-match outcome.
func NoMatchOutcome(usedDefault bool) Outcome {
	return Outcome{Type: OutcomeNoMatch, UsedDefault: usedDefault}
}

// Interaction is one recorded invocation.
type Interaction struct {
	Seq       uint64  `json:"seq"`
	Timestamp string  `json:"timestamp"`
	Elapsed   Elapsed `json:"elapsed"`
	Args      Args    `json:"args"`
	Outcome   Outcome `json:"outcome"`
}

// Log accumulates interactions in memory, mirroring each record to a
// JSONL file when one is configured. Safe for concurrent use, and
// copies share the underlying store.
type Log struct {
	start        time.Time
	mu           *sync.Mutex
	interactions *[]Interaction
	file         *os.File
}

// NewLog creates an in-memory log.
func NewLog() *Log {
	return &Log{
		start:        time.Now(),
		mu:           &sync.Mutex{},
		interactions: &[]Interaction{},
	}
}

// NewFileLog creates a log that also appends JSONL lines to path.
func NewFileLog(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	l := NewLog()
	l.file = f
	return l, nil
}

// Record appends one interaction.
func (l *Log) Record(args Args, outcome Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	interaction := Interaction{
		Seq:       uint64(len(*l.interactions)),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Elapsed:   elapsedSince(l.start, now),
		Args:      args,
		Outcome:   outcome,
	}
	*l.interactions = append(*l.interactions, interaction)

	if l.file != nil {
		if data, err := json.Marshal(interaction); err == nil {
			fmt.Fprintln(l.file, string(data))
			l.file.Sync()
		}
	}
}

// Interactions returns a copy of everything recorded.
func (l *Log) Interactions() []Interaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Interaction, len(*l.interactions))
	copy(out, *l.interactions)
	return out
}

// Last returns the most recent n interactions in record order.
func (l *Log) Last(n int) []Interaction {
	all := l.Interactions()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Count reports how many interactions satisfy pred.
func (l *Log) Count(pred func(*Interaction) bool) int {
	count := 0
	for _, i := range l.Interactions() {
		if pred(&i) {
			count++
		}
	}
	return count
}

// FindByPrompt returns interactions whose prompt contains pattern.
func (l *Log) FindByPrompt(pattern string) []Interaction {
	var out []Interaction
	for _, i := range l.Interactions() {
		if i.Args.Prompt != nil && strings.Contains(*i.Args.Prompt, pattern) {
			out = append(out, i)
		}
	}
	return out
}

// FindResponses returns interactions that produced a response.
func (l *Log) FindResponses() []Interaction {
	return l.findByType(OutcomeResponse)
}

// FindFailures returns interactions that produced a failure.
func (l *Log) FindFailures() []Interaction {
	return l.findByType(OutcomeFailure)
}

func (l *Log) findByType(outcomeType string) []Interaction {
	var out []Interaction
	for _, i := range l.Interactions() {
		if i.Outcome.Type == outcomeType {
			out = append(out, i)
		}
	}
	return out
}

// Len returns the number of recorded interactions.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(*l.interactions)
}

// Empty reports whether nothing has been recorded.
func (l *Log) Empty() bool { return l.Len() == 0 }

// Clear drops all recorded interactions.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.interactions = (*l.interactions)[:0]
}

// Close releases the capture file when one is open.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
