package claudeless_test

import (
	"os"
	"strings"
	"testing"
)

func TestREADMEDocumentsSimulatorFlags(t *testing.T) {
	content, err := os.ReadFile("README.md")
	if err != nil {
		t.Fatalf("Failed to read README.md: %v", err)
	}

	readmeText := string(content)

	requiredFlags := map[string]string{
		"--scenario": "CLAUDELESS_SCENARIO",
		"--capture":  "CLAUDELESS_CAPTURE",
		"--failure":  "CLAUDELESS_FAILURE",
	}

	for flag, env := range requiredFlags {
		if !strings.Contains(readmeText, flag) {
			t.Errorf("README.md missing flag %s", flag)
		}
		if !strings.Contains(readmeText, env) {
			t.Errorf("README.md missing environment variable for %s (expected: %s)", flag, env)
		}
	}

	for _, section := range []string{"## Usage", "## Exit codes"} {
		if !strings.Contains(readmeText, section) {
			t.Errorf("README.md missing %s section", section)
		}
	}
}
