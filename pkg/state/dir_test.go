package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"claudeless/pkg/state"
)

func TestNormalizeProjectPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/Users/user/Developer/myproject", "-Users-user-Developer-myproject"},
		{"/tmp/test.txt", "-tmp-test-txt"},
		{"/a/b.c/d", "-a-b-c-d"},
	}
	for _, tt := range tests {
		if got := state.NormalizeProjectPath(tt.in); got != tt.want {
			t.Errorf("NormalizeProjectPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitializeCreatesLayout(t *testing.T) {
	root := t.TempDir()
	dir := state.NewDir(root)
	if err := dir.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for _, sub := range []string{"todos", "projects", "plans", "sessions"} {
		info, err := os.Stat(filepath.Join(root, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", sub, err)
		}
	}
	data, err := os.ReadFile(dir.SettingsPath())
	if err != nil || string(data) != "{}" {
		t.Errorf("settings.json = %q err=%v, want {}", data, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("root perm = %o, want 700", perm)
	}
	if !dir.Initialized() {
		t.Error("Initialized() = false")
	}
}

func TestInitializeKeepsExistingSettings(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "settings.json")
	if err := os.WriteFile(path, []byte(`{"env":{"A":"1"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := state.NewDir(root).Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"env":{"A":"1"}}` {
		t.Errorf("settings overwritten: %s", data)
	}
}

func TestResolvePrefersOwnEnvVar(t *testing.T) {
	own := t.TempDir()
	other := t.TempDir()
	t.Setenv(state.EnvStateDir, own)
	t.Setenv(state.EnvClaudeStateDir, other)

	dir, err := state.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir.Root() != own {
		t.Errorf("root = %s, want %s", dir.Root(), own)
	}

	t.Setenv(state.EnvStateDir, "")
	dir, err = state.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir.Root() != other {
		t.Errorf("root = %s, want %s", dir.Root(), other)
	}
}

func TestResolveFallsBackToTemp(t *testing.T) {
	t.Setenv(state.EnvStateDir, "")
	t.Setenv(state.EnvClaudeStateDir, "")

	dir, err := state.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	home, _ := os.UserHomeDir()
	if home != "" && dir.Root() == filepath.Join(home, ".claude") {
		t.Error("fallback must not target the real state directory")
	}
}

func TestReset(t *testing.T) {
	root := t.TempDir()
	dir := state.NewDir(root)
	if err := dir.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir.TodosDir(), "x.json"), []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir.ProjectDir("/some/project"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := dir.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	entries, _ := os.ReadDir(dir.TodosDir())
	if len(entries) != 0 {
		t.Error("todos not cleared")
	}
	entries, _ = os.ReadDir(dir.ProjectsDir())
	if len(entries) != 0 {
		t.Error("projects not cleared")
	}
	data, _ := os.ReadFile(dir.SettingsPath())
	if string(data) != "{}" {
		t.Errorf("settings = %s", data)
	}
}

func TestValidateStructure(t *testing.T) {
	root := t.TempDir()
	dir := state.NewDir(root)
	warnings := dir.ValidateStructure()
	if len(warnings) == 0 {
		t.Fatal("uninitialized layout should produce warnings")
	}

	if err := dir.Initialize(); err != nil {
		t.Fatal(err)
	}
	if warnings := dir.ValidateStructure(); len(warnings) != 0 {
		t.Errorf("initialized layout: %v", warnings)
	}

	if err := os.WriteFile(dir.SettingsPath(), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	warnings = dir.ValidateStructure()
	if len(warnings) != 1 || warnings[0] != "Invalid settings.json" {
		t.Errorf("warnings = %v", warnings)
	}
}
