// Package errors provides structured error types for deplist.
//
// Every failure the resolver reports carries a machine-readable [Code] so
// callers (the CLI, the HTTP API, tests) can branch on the kind of failure
// without string matching:
//
//	err := errors.New(errors.ErrCodeAllMasked, "all versions of '%s' are masked", query)
//	if errors.Is(err, errors.ErrCodeAllMasked) {
//	    // retry with override masks
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidRepository, origErr, "load %s", path)
//
// # Error Codes
//
// Codes are grouped by the layer that raises them:
//   - INVALID_*: malformed input (constraints, options, repository files)
//   - resolution codes: ALL_MASKED, CIRCULAR_DEPENDENCY, BLOCK_CONFLICT, ...
//   - set codes: UNKNOWN_SET, RECURSIVE_SET (always recoverable)
//   - INTERNAL_ERROR: broken invariants
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidSpec       Code = "INVALID_SPEC"
	ErrCodeInvalidRepository Code = "INVALID_REPOSITORY"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeMalformedOptions  Code = "MALFORMED_OPTIONS"

	// Resolution errors
	ErrCodeAllMasked             Code = "ALL_MASKED"
	ErrCodeUseRequirementsNotMet Code = "USE_REQUIREMENTS_NOT_MET"
	ErrCodeCircularDependency    Code = "CIRCULAR_DEPENDENCY"
	ErrCodeBlockConflict         Code = "BLOCK_CONFLICT"
	ErrCodeDowngradeNotAllowed   Code = "DOWNGRADE_NOT_ALLOWED"
	ErrCodeNoDestination         Code = "NO_DESTINATION"
	ErrCodeSlotConflict          Code = "SLOT_CONFLICT"
	ErrCodeListInUse             Code = "LIST_IN_USE"

	// Named set conditions
	ErrCodeUnknownSet   Code = "UNKNOWN_SET"
	ErrCodeRecursiveSet Code = "RECURSIVE_SET"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode implements [Coder].
func (e *Error) ErrorCode() Code {
	return e.Code
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Coder is implemented by errors that carry a [Code]. Typed resolver errors
// implement it so that [Is] works on them directly.
type Coder interface {
	ErrorCode() Code
}

// Is reports whether err has the given error code.
// It walks the error chain and compares against the first [Coder] found.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsRecoverable reports whether the code names a condition the resolver
// records as a warning rather than aborting on.
func IsRecoverable(code Code) bool {
	switch code {
	case ErrCodeUnknownSet, ErrCodeRecursiveSet:
		return true
	}
	return false
}
