// Package errors provides structured error types for the mind-map editor.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the editor, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes the graph core produces are:
//   - NOT_FOUND: a referenced node, edge or document does not exist
//   - INVALID_OPERATION: the operation would violate a graph invariant or
//     precondition (deleting the root, self-loop, blank label, duplicate edge)
//   - PERSISTENCE_ERROR: opaque failure from a load/save collaborator
//
// The remaining codes describe bad input at the edges of the system
// (INVALID_INPUT, INVALID_FORMAT), transport problems (NETWORK_ERROR,
// TIMEOUT) and unexpected internal failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node %q not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle absence
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "save %s", docID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph core errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"
	ErrCodePersistence      Code = "PERSISTENCE_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted, so a PERSISTENCE_ERROR
// wrapping a NOT_FOUND reports PERSISTENCE_ERROR.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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

// NotFound is shorthand for New(ErrCodeNotFound, ...).
func NotFound(format string, args ...any) *Error {
	return New(ErrCodeNotFound, format, args...)
}

// InvalidOperation is shorthand for New(ErrCodeInvalidOperation, ...).
func InvalidOperation(format string, args ...any) *Error {
	return New(ErrCodeInvalidOperation, format, args...)
}

// Persistence wraps a collaborator failure as PERSISTENCE_ERROR.
// A nil cause yields nil.
func Persistence(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return Wrap(ErrCodePersistence, cause, format, args...)
}
