// Package state emulates the on-disk layout Claude Code keeps under
// ~/.claude: session transcripts, todos, plans, and settings. The
// simulator writes the same file shapes so external watchers that parse
// real state keep working against recorded runs.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that select the state root.
const (
	EnvStateDir       = "CLAUDELESS_STATE_DIR"
	EnvClaudeStateDir = "CLAUDE_LOCAL_STATE_DIR"
)

// Dir is a simulated ~/.claude directory.
type Dir struct {
	root        string
	initialized bool
}

// NewDir creates a state directory rooted at the given path. Nothing is
// written until Initialize is called.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Resolve picks the state root from the environment, falling back to a
// fresh temp directory. The temp fallback is deliberate: without an
// explicit override the simulator must never touch a real ~/.claude.
func Resolve() (*Dir, error) {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return NewDir(dir), nil
	}
	if dir := os.Getenv(EnvClaudeStateDir); dir != "" {
		return NewDir(dir), nil
	}
	tmp, err := os.MkdirTemp("", "claudeless-state-*")
	if err != nil {
		return nil, fmt.Errorf("create temp state dir: %w", err)
	}
	return NewDir(tmp), nil
}

// Initialize creates the directory structure and a default settings file.
func (d *Dir) Initialize() error {
	for _, dir := range []string{d.TodosDir(), d.ProjectsDir(), d.PlansDir(), d.SessionsDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create state dir %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(d.SettingsPath()); os.IsNotExist(err) {
		if err := os.WriteFile(d.SettingsPath(), []byte("{}"), 0o600); err != nil {
			return fmt.Errorf("write default settings: %w", err)
		}
	}
	if err := os.Chmod(d.root, 0o700); err != nil {
		return fmt.Errorf("restrict state dir: %w", err)
	}
	d.initialized = true
	return nil
}

func (d *Dir) Initialized() bool { return d.initialized }

func (d *Dir) Root() string         { return d.root }
func (d *Dir) TodosDir() string     { return filepath.Join(d.root, "todos") }
func (d *Dir) ProjectsDir() string  { return filepath.Join(d.root, "projects") }
func (d *Dir) PlansDir() string     { return filepath.Join(d.root, "plans") }
func (d *Dir) SessionsDir() string  { return filepath.Join(d.root, "sessions") }
func (d *Dir) SettingsPath() string { return filepath.Join(d.root, "settings.json") }

// ProjectDir returns the per-project directory for a project path,
// using the same normalization as real Claude Code.
func (d *Dir) ProjectDir(projectPath string) string {
	return filepath.Join(d.ProjectsDir(), ProjectDirName(projectPath))
}

// TodoPath returns the todo file path for a session context.
func (d *Dir) TodoPath(context string) string {
	return filepath.Join(d.TodosDir(), context+".json")
}

// Reset removes all recorded state but keeps the directory structure.
func (d *Dir) Reset() error {
	for _, dir := range []string{d.TodosDir(), d.PlansDir(), d.SessionsDir()} {
		if err := clearDir(dir); err != nil {
			return err
		}
	}
	if _, err := os.Stat(d.ProjectsDir()); err == nil {
		if err := os.RemoveAll(d.ProjectsDir()); err != nil {
			return fmt.Errorf("reset projects: %w", err)
		}
		if err := os.MkdirAll(d.ProjectsDir(), 0o700); err != nil {
			return fmt.Errorf("recreate projects: %w", err)
		}
	}
	if err := os.WriteFile(d.SettingsPath(), []byte("{}"), 0o600); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

// ValidateStructure checks the layout against the expected shape and
// returns warnings for anything off. Empty means the structure matches.
func (d *Dir) ValidateStructure() []string {
	var warnings []string
	for _, dir := range []string{"projects", "todos"} {
		if _, err := os.Stat(filepath.Join(d.root, dir)); err != nil {
			warnings = append(warnings, fmt.Sprintf("Missing directory: %s", dir))
		}
	}
	if data, err := os.ReadFile(d.SettingsPath()); err != nil {
		warnings = append(warnings, "Missing settings.json")
	} else if !json.Valid(data) {
		warnings = append(warnings, "Invalid settings.json")
	}
	entries, err := os.ReadDir(d.ProjectsDir())
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			settings := filepath.Join(d.ProjectsDir(), e.Name(), "settings.json")
			if _, err := os.Stat(settings); err != nil {
				warnings = append(warnings, fmt.Sprintf("Project %s missing settings.json", e.Name()))
			}
		}
	}
	return warnings
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// NormalizeProjectPath converts a filesystem path to the directory
// naming convention real Claude Code uses under projects/:
// /Users/foo/my.project becomes -Users-foo-my-project.
func NormalizeProjectPath(path string) string {
	return strings.NewReplacer("/", "-", ".", "-").Replace(path)
}

// ProjectDirName resolves symlinks before normalizing so the same
// project always lands in the same directory. Falls back to the raw
// path when resolution fails.
func ProjectDirName(path string) string {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}
	if abs, err := filepath.Abs(canonical); err == nil {
		canonical = abs
	}
	return NormalizeProjectPath(canonical)
}
