// Package cli implements the scanless command line interface: parsing
// input files with the bundled grammars, printing grammars, and an
// interactive expression REPL.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitUsage   = 1
	ExitIO      = 2
	ExitParse   = 3
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func usageErr(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

func ioErr(err error) error {
	return &exitError{code: ExitIO, err: err}
}

func parseErr(err error) error {
	return &exitError{code: ExitParse, err: err}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scanless",
		Short:         "Grammar-driven scannerless parser",
		Long:          "scanless parses text with in-memory grammars using a back-tracking, memoizing, scannerless parser engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newParseCmd())
	root.AddCommand(newGrammarCmd())
	root.AddCommand(newReplCmd())
	return root
}

// Run executes the CLI and returns the process exit code.
func Run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if ee, ok := err.(*exitError); ok {
			return ee.code
		}
		return ExitUsage
	}
	return ExitSuccess
}
