package scenario

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pattern kinds, matching the scenario file's tagged "type" field.
const (
	PatternExact    = "exact"
	PatternRegex    = "regex"
	PatternGlob     = "glob"
	PatternContains = "contains"
	PatternAny      = "any"
)

// PatternSpec is a prompt matcher as written in the scenario file.
type PatternSpec struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// UnmarshalJSON also accepts a bare string as shorthand for contains.
func (p *PatternSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PatternSpec{Type: PatternContains, Text: s}
		return nil
	}
	type spec PatternSpec
	var v spec
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PatternSpec(v)
	return nil
}

// Matcher is a compiled PatternSpec.
type Matcher struct {
	spec PatternSpec
	re   *regexp.Regexp // set for regex and glob
}

// Compile validates the spec and builds the matcher. Glob patterns become
// anchored regular expressions; * matches any run, ? a single character.
func (p PatternSpec) Compile() (*Matcher, error) {
	m := &Matcher{spec: p}
	switch p.Type {
	case PatternExact, PatternContains, PatternAny:
	case PatternRegex:
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p.Pattern, err)
		}
		m.re = re
	case PatternGlob:
		re, err := regexp.Compile(globToRegex(p.Pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p.Pattern, err)
		}
		m.re = re
	default:
		return nil, fmt.Errorf("unknown pattern type %q", p.Type)
	}
	return m, nil
}

// Matches reports whether prompt satisfies the pattern.
func (m *Matcher) Matches(prompt string) bool {
	switch m.spec.Type {
	case PatternExact:
		return prompt == m.spec.Text
	case PatternContains:
		return strings.Contains(prompt, m.spec.Text)
	case PatternAny:
		return true
	default:
		return m.re.MatchString(prompt)
	}
}

// Spec returns the original pattern spec.
func (m *Matcher) Spec() PatternSpec { return m.spec }

// globToRegex translates a shell-style glob into an anchored regex.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString(`^`)
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return b.String()
}
