// Package errors provides a lightweight structured error type (ShipyardError)
// for category-based classification and retry semantics in the pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a Shipyard error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"
	CategoryTool    ErrorCategory = "tool"

	// Target execution errors
	CategoryCoverage   ErrorCategory = "coverage"
	CategoryDocs       ErrorCategory = "docs"
	CategoryPublish    ErrorCategory = "publish"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ShipyardError is a structured error with category, retryability, and context
type ShipyardError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ShipyardError
type ContextFields map[string]any

// Error implements the error interface
func (e *ShipyardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ShipyardError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ShipyardError) WithContext(key string, value any) *ShipyardError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ShipyardError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ShipyardError {
	return &ShipyardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new ShipyardError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ShipyardError {
	return &ShipyardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable ShipyardError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *ShipyardError {
	return &ShipyardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable creates a new retryable ShipyardError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *ShipyardError {
	return &ShipyardError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*ShipyardError); ok {
		return se.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if se, ok := err.(*ShipyardError); ok {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a ShipyardError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*ShipyardError); ok {
		return se.Category
	}
	return CategoryInternal
}
