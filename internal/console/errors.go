package console

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

// Exit code constants
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsageError  = 2
	ExitConfigError = 3
	ExitFetchError  = 4
	ExitParseError  = 5
)

// CLIError is a structured error with user-facing context
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
	Err        error
}

// Error implements the error interface, returning the summary
func (e *CLIError) Error() string {
	return e.Summary
}

// Unwrap returns the underlying error.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// Classify maps library errors onto CLI errors with exit codes.
// Errors that are already a *CLIError are returned unchanged.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var fetchErr *sheetdash.FetchError
	var parseErr *sheetdash.ParseError
	switch {
	case errors.As(err, &fetchErr):
		e := &CLIError{
			Summary:  "failed to download export",
			Detail:   fetchErr.Error(),
			ExitCode: ExitFetchError,
			Err:      err,
		}
		if fetchErr.StatusCode != 0 {
			e.Suggestion = "Check that the sheet is published to the web and the URL is correct"
		}
		return e
	case errors.Is(err, sheetdash.ErrFileNotFound):
		return &CLIError{
			Summary:  "export file not found",
			Detail:   err.Error(),
			ExitCode: ExitFetchError,
			Err:      err,
		}
	case errors.As(err, &parseErr):
		return &CLIError{
			Summary:    "failed to parse export",
			Detail:     parseErr.Error(),
			Suggestion: "Check that --kind matches the sheet layout (see 'sheetdash kinds')",
			ExitCode:   ExitParseError,
			Err:        err,
		}
	case errors.Is(err, sheetdash.ErrUnknownKind),
		errors.Is(err, aggregate.ErrUnknownView),
		errors.Is(err, style.ErrUnknownChartType):
		return &CLIError{
			Summary:  err.Error(),
			ExitCode: ExitUsageError,
			Err:      err,
		}
	default:
		return &CLIError{
			Summary:  err.Error(),
			ExitCode: ExitGeneral,
			Err:      err,
		}
	}
}

// FormatError prints a structured error message to stderr
func (p *Printer) FormatError(e *CLIError) {
	if p.useColors {
		color.New(color.FgRed, color.Bold).Fprintf(p.err, "Error: %s\n", e.Summary)
		if e.Detail != "" {
			fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
		}
		if e.Suggestion != "" {
			color.New(color.FgCyan).Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
		}
		return
	}
	fmt.Fprintf(p.err, "[ERROR] %s\n", e.Summary)
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  Cause: %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(p.err, "  Suggestion: %s\n", e.Suggestion)
	}
}
