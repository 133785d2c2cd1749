package scenario_test

import (
	"testing"

	"claudeless/pkg/scenario"
)

func TestPatternMatching(t *testing.T) {
	tests := []struct {
		name   string
		spec   scenario.PatternSpec
		prompt string
		want   bool
	}{
		{"exact hit", scenario.PatternSpec{Type: scenario.PatternExact, Text: "hello"}, "hello", true},
		{"exact miss on superstring", scenario.PatternSpec{Type: scenario.PatternExact, Text: "hello"}, "hello world", false},
		{"contains hit", scenario.PatternSpec{Type: scenario.PatternContains, Text: "hello"}, "well hello there", true},
		{"contains miss", scenario.PatternSpec{Type: scenario.PatternContains, Text: "hello"}, "goodbye", false},
		{"regex hit", scenario.PatternSpec{Type: scenario.PatternRegex, Pattern: `^fix \w+$`}, "fix bug", true},
		{"regex unanchored by default", scenario.PatternSpec{Type: scenario.PatternRegex, Pattern: `bug`}, "fix bug now", true},
		{"glob is anchored", scenario.PatternSpec{Type: scenario.PatternGlob, Pattern: "run *"}, "run tests", true},
		{"glob anchor rejects prefix", scenario.PatternSpec{Type: scenario.PatternGlob, Pattern: "run *"}, "please run tests", false},
		{"glob question mark", scenario.PatternSpec{Type: scenario.PatternGlob, Pattern: "v?"}, "v2", true},
		{"glob escapes regex meta", scenario.PatternSpec{Type: scenario.PatternGlob, Pattern: "a.b"}, "axb", false},
		{"any matches everything", scenario.PatternSpec{Type: scenario.PatternAny}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.spec.Compile()
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := m.Matches(tt.prompt); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestPatternCompileErrors(t *testing.T) {
	bad := []scenario.PatternSpec{
		{Type: scenario.PatternRegex, Pattern: "("},
		{Type: "unknown"},
	}
	for _, spec := range bad {
		if _, err := spec.Compile(); err == nil {
			t.Errorf("Compile(%+v) succeeded, want error", spec)
		}
	}
}
