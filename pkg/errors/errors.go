// Package errors provides structured error types for notegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the explorer and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for alerts
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the error taxonomy of the core:
//   - NETWORK_ERROR, TIMEOUT, INVALID_RESPONSE: draw/query transport failures.
//     Reported to the user, the operation is aborted, prior state stays visible.
//   - MALFORMED_GRAPH: a link references a node that is not in the snapshot.
//     The whole batch is rejected.
//   - OUT_OF_RANGE: a line lookup outside the note buffer. Recovered locally.
//   - INVALID_INPUT, NOT_FOUND, INTERNAL_ERROR: everything else.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedGraph, "link %d: unknown target %q", i, name)
//	if errors.Is(err, errors.ErrCodeMalformedGraph) {
//	    // Reject the batch
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "draw request to %s", url)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeOutOfRange    Code = "OUT_OF_RANGE"

	// Graph errors
	ErrCodeMalformedGraph Code = "MALFORMED_GRAPH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeTimeout         Code = "TIMEOUT"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"

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

// IsTransport reports whether err belongs to the transport/parse class of
// the taxonomy: the user is alerted and prior state is left untouched.
func IsTransport(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeInvalidResponse:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status the HTTP API answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeOutOfRange, ErrCodeMalformedGraph:
		return 400
	case ErrCodeNotFound, ErrCodeSessionNotFound:
		return 404
	case ErrCodeNetwork, ErrCodeInvalidResponse:
		return 502
	case ErrCodeTimeout:
		return 504
	default:
		return 500
	}
}
