// Package errors provides a lightweight structured error type (EsmpackError)
// for category-based classification in the CLI and pipeline.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of an esmpack error for classification
type ErrorCategory string

const (
	// User-facing input errors
	CategoryUsage      ErrorCategory = "usage"
	CategoryValidation ErrorCategory = "validation"
	CategoryConfig     ErrorCategory = "config"

	// External tool integration errors
	CategoryInstall ErrorCategory = "install"
	CategoryBundler ErrorCategory = "bundler"

	// Pipeline and filesystem errors
	CategoryManifest   ErrorCategory = "manifest"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// EsmpackError is a structured error with category, severity, and context
type EsmpackError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for EsmpackError
type ContextFields map[string]any

// Error implements the error interface
func (e *EsmpackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *EsmpackError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *EsmpackError) WithContext(key string, value any) *EsmpackError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new EsmpackError
func New(category ErrorCategory, severity ErrorSeverity, message string) *EsmpackError {
	return &EsmpackError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new EsmpackError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *EsmpackError {
	return &EsmpackError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
