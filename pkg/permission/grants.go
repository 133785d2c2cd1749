package permission

import (
	"path/filepath"
	"strings"
)

// Grant keys for edit and write session grants. A "yes for session"
// answer on an edit or write dialog covers all later edits or writes.
const (
	GrantEditAll  = "edit:*"
	GrantWriteAll = "write:*"
)

// BashGrantPrefix derives the session-grant prefix for a bash command:
// the command word, plus the containing directory of an immediately
// following absolute path. "cat /etc/passwd | head -5" grants
// "cat /etc/", so later reads from /etc/ skip the prompt while
// "ls /etc/" still prompts.
func BashGrantPrefix(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	if len(fields) > 1 && strings.HasPrefix(fields[1], "/") {
		dir := filepath.Dir(fields[1])
		if dir == "/" {
			return word + " /"
		}
		return word + " " + dir + "/"
	}
	return word
}

// BashGrantKey builds the grant-set key for a bash command.
func BashGrantKey(command string) string {
	return "bash:" + BashGrantPrefix(command)
}

// SessionGrants tracks "yes for session" permission answers. Not safe
// for concurrent use; callers hold it behind the TUI state lock.
type SessionGrants struct {
	keys map[string]struct{}
}

// NewSessionGrants creates an empty grant set.
func NewSessionGrants() *SessionGrants {
	return &SessionGrants{keys: map[string]struct{}{}}
}

// Add records a grant key.
func (g *SessionGrants) Add(key string) {
	g.keys[key] = struct{}{}
}

// Has reports whether a grant key was recorded.
func (g *SessionGrants) Has(key string) bool {
	_, ok := g.keys[key]
	return ok
}

// Clear drops all grants, as /clear does.
func (g *SessionGrants) Clear() {
	g.keys = map[string]struct{}{}
}

// Empty reports whether no grants are held.
func (g *SessionGrants) Empty() bool { return len(g.keys) == 0 }
