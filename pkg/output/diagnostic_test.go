package output

import (
	"strings"
	"testing"
)

func TestWriteErrorColor(t *testing.T) {
	var buf strings.Builder
	writeError(&buf, "bad input", true)
	if buf.String() != "\x1b[31mError: bad input\x1b[0m\n" {
		t.Errorf("tty output = %q", buf.String())
	}

	buf.Reset()
	writeError(&buf, "bad input", false)
	if buf.String() != "Error: bad input\n" {
		t.Errorf("plain output = %q", buf.String())
	}
}

func TestWriteWarningColor(t *testing.T) {
	var buf strings.Builder
	writeWarning(&buf, "heads up", true)
	if buf.String() != "\x1b[33mWarning: heads up\x1b[0m\n" {
		t.Errorf("tty output = %q", buf.String())
	}

	buf.Reset()
	writeWarning(&buf, "heads up", false)
	if buf.String() != "Warning: heads up\n" {
		t.Errorf("plain output = %q", buf.String())
	}
}
