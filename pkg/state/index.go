package state

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// IndexEntry is one session in sessions-index.json.
type IndexEntry struct {
	SessionID    string `json:"sessionId"`
	FullPath     string `json:"fullPath"`
	FileMtime    int64  `json:"fileMtime"`
	FirstPrompt  string `json:"firstPrompt"`
	MessageCount int    `json:"messageCount"`
	Created      string `json:"created"`
	Modified     string `json:"modified"`
	GitBranch    string `json:"gitBranch"`
	ProjectPath  string `json:"projectPath"`
	IsSidechain  bool   `json:"isSidechain"`
}

// SessionsIndex is the sessions-index.json file kept per project
// directory. The format version is always 1.
type SessionsIndex struct {
	Version int          `json:"version"`
	Entries []IndexEntry `json:"entries"`
}

// NewSessionsIndex creates an empty index.
func NewSessionsIndex() *SessionsIndex {
	return &SessionsIndex{Version: 1, Entries: []IndexEntry{}}
}

// LoadSessionsIndex reads an index file.
func LoadSessionsIndex(path string) (*SessionsIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sessions index: %w", err)
	}
	var idx SessionsIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse sessions index: %w", err)
	}
	return &idx, nil
}

// Save writes the index as pretty-printed JSON.
func (x *SessionsIndex) Save(path string) error {
	data, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write sessions index: %w", err)
	}
	return nil
}

// AddOrUpdate inserts a new entry, or refreshes the mutable fields of
// an existing one. Identity fields never change after first insert.
func (x *SessionsIndex) AddOrUpdate(entry IndexEntry) {
	for i := range x.Entries {
		if x.Entries[i].SessionID == entry.SessionID {
			x.Entries[i].FileMtime = entry.FileMtime
			x.Entries[i].MessageCount = entry.MessageCount
			x.Entries[i].Modified = entry.Modified
			return
		}
	}
	x.Entries = append(x.Entries, entry)
}

// Get returns the entry for a session ID, or nil.
func (x *SessionsIndex) Get(sessionID string) *IndexEntry {
	for i := range x.Entries {
		if x.Entries[i].SessionID == sessionID {
			return &x.Entries[i]
		}
	}
	return nil
}

func (x *SessionsIndex) Len() int { return len(x.Entries) }

// GitBranch returns the current branch name, or empty string outside a
// git repository.
func GitBranch() string {
	out, err := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
