package tui

import (
	"fmt"
	"strings"
	"time"
)

// Screenshot is a captured snapshot of rendered terminal output, used
// for string-based comparison in tests.
type Screenshot struct {
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Lines    []string           `json:"lines"`
	Metadata ScreenshotMetadata `json:"metadata"`
}

// ScreenshotMetadata records when and where a capture was taken.
type ScreenshotMetadata struct {
	Timestamp int64   `json:"timestamp"`
	Mode      string  `json:"mode"`
	Label     *string `json:"label,omitempty"`
}

// ScreenshotFromText splits rendered output into trailing-whitespace
// normalized lines.
func ScreenshotFromText(text string, width, height int) Screenshot {
	return Screenshot{
		Width:  width,
		Height: height,
		Lines:  normalizeLines(text),
	}
}

// ToText joins the captured lines back into a single string.
func (s Screenshot) ToText() string {
	return strings.Join(s.Lines, "\n")
}

// Diff returns every line that differs between the two captures.
func (s Screenshot) Diff(other Screenshot) []LineDiff {
	var diffs []LineDiff
	max := len(s.Lines)
	if len(other.Lines) > max {
		max = len(other.Lines)
	}
	for i := 0; i < max; i++ {
		var a, b string
		if i < len(s.Lines) {
			a = s.Lines[i]
		}
		if i < len(other.Lines) {
			b = other.Lines[i]
		}
		if a != b {
			diffs = append(diffs, LineDiff{LineNumber: i, Expected: a, Actual: b})
		}
	}
	return diffs
}

// Matches reports whether two captures are identical.
func (s Screenshot) Matches(other Screenshot) bool {
	if s.Width != other.Width || s.Height != other.Height {
		return false
	}
	if len(s.Lines) != len(other.Lines) {
		return false
	}
	for i := range s.Lines {
		if s.Lines[i] != other.Lines[i] {
			return false
		}
	}
	return true
}

// LineDiff is a single mismatched line between two screenshots.
type LineDiff struct {
	LineNumber int
	Expected   string
	Actual     string
}

func (d LineDiff) String() string {
	return fmt.Sprintf("Line %d:\n  expected: %q\n  actual:   %q", d.LineNumber, d.Expected, d.Actual)
}

// ScreenshotCapture accumulates captures over a test run.
type ScreenshotCapture struct {
	width    int
	height   int
	captures []Screenshot
}

// NewScreenshotCapture sizes the capture helper.
func NewScreenshotCapture(width, height int) *ScreenshotCapture {
	return &ScreenshotCapture{width: width, height: height}
}

// CaptureText records a labeled capture of the given content.
func (c *ScreenshotCapture) CaptureText(content string, label *string) Screenshot {
	shot := Screenshot{
		Width:  c.width,
		Height: c.height,
		Lines:  normalizeLines(content),
		Metadata: ScreenshotMetadata{
			Timestamp: time.Now().UnixMilli(),
			Label:     label,
		},
	}
	c.captures = append(c.captures, shot)
	return shot
}

// Captures returns every capture taken so far.
func (c *ScreenshotCapture) Captures() []Screenshot { return c.captures }

// Last returns the most recent capture, or nil when none was taken.
func (c *ScreenshotCapture) Last() *Screenshot {
	if len(c.captures) == 0 {
		return nil
	}
	return &c.captures[len(c.captures)-1]
}

// Clear drops all captures.
func (c *ScreenshotCapture) Clear() { c.captures = nil }

func normalizeLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}
