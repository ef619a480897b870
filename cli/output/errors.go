package output

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitDaemonError = 3
	ExitConfigError = 4
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
}

func (e *CLIError) Error() string {
	if e.Detail != "" {
		return e.Summary + ": " + e.Detail
	}
	return e.Summary
}

// ExitCode returns the code for err, ExitGeneral unless err is a CLIError.
func ExitCode(err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}

// FormatError prints err to stderr, with cause and suggestion when it is a CLIError.
func (p *Printer) FormatError(err error) {
	var e *CLIError
	if !errors.As(err, &e) {
		p.Error("%s", err)
		return
	}
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	}
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		if p.useColors {
			color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		} else {
			fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
	}
}
