// Package errors provides structured error types for getblunted.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the pipeline packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages naming the offending node or edge
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Fatal codes abort the run with a non-zero exit. NOT_DOMINO_FREE is the one
// non-fatal sentinel: the exact biclique-cover path uses it internally to fall
// through to the heuristic cover.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedInput, "line %d: bad CIGAR %q", n, s)
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "splice biclique %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Graph consistency errors
	ErrCodeEdgeNotFound     Code = "EDGE_NOT_FOUND"
	ErrCodeOverlongOverlap  Code = "OVERLONG_OVERLAP"
	ErrCodeDanglingTerminus Code = "DANGLING_TERMINUS"

	// Non-fatal sentinel: exact cover declines, caller falls back to heuristic
	ErrCodeNotDominoFree Code = "NOT_DOMINO_FREE"

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
// It unwraps the error chain looking for an *Error with a matching code.
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
