package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// PrintError writes an error line to stderr, red when it is a terminal.
func PrintError(msg string) {
	writeError(os.Stderr, msg, stderrIsTerminal())
}

// PrintWarning writes a warning line to stderr, yellow when it is a terminal.
func PrintWarning(msg string) {
	writeWarning(os.Stderr, msg, stderrIsTerminal())
}

// PrintMCP writes an MCP status line to stderr.
func PrintMCP(msg string) {
	fmt.Fprintf(os.Stderr, "MCP: %s\n", msg)
}

// PrintMCPError writes an MCP failure line to stderr. Used by strict
// mode before exiting.
func PrintMCPError(msg string) {
	fmt.Fprintf(os.Stderr, "MCP error: %s\n", msg)
}

// PrintMCPWarning writes a non-fatal MCP line to stderr in debug mode.
func PrintMCPWarning(msg string) {
	fmt.Fprintf(os.Stderr, "MCP warning: %s\n", msg)
}

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func writeError(w io.Writer, msg string, isTerminal bool) {
	if isTerminal {
		fmt.Fprintf(w, "\x1b[31mError: %s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
}

func writeWarning(w io.Writer, msg string, isTerminal bool) {
	if isTerminal {
		fmt.Fprintf(w, "\x1b[33mWarning: %s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintf(w, "Warning: %s\n", msg)
}
