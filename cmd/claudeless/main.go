// Package main is the entry point for the claudeless CLI, a
// deterministic stand-in for the claude binary.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"claudeless/pkg/scenario"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the root command and maps its error into a process
// exit code. Interrupted sessions exit 130 like the real CLI.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return scenario.ExitSuccess
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	printError(stderr, err.Error())
	return scenario.ExitError
}

// printError writes an error line to stderr, red when it is a terminal.
func printError(w io.Writer, msg string) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintf(w, "\x1b[31mError: %s\x1b[0m\n", msg)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
}
