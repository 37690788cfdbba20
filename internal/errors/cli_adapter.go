package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the CLI. External-tool failures propagate the tool's own exit status
// verbatim; every other failure maps to exit code 1.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the exit code for an error. Success is 0. When an
// installer or bundler invocation failed with a non-zero exit status, that
// status is propagated verbatim; everything else is 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var ee *EsmpackError
	if stderrors.As(err, &ee) {
		switch ee.Category {
		case CategoryInstall, CategoryBundler:
			var exitErr *exec.ExitError
			if stderrors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
				return exitErr.ExitCode()
			}
		}
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if ee, ok := err.(*EsmpackError); ok {
		return a.formatEsmpack(ee)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatEsmpack formats an EsmpackError for display.
func (a *CLIErrorAdapter) formatEsmpack(err *EsmpackError) string {
	if a.verbose {
		return err.Error()
	}

	if err.Cause != nil {
		return fmt.Sprintf("Error: %s: %v", err.Message, err.Cause)
	}
	return fmt.Sprintf("Error: %s", err.Message)
}
