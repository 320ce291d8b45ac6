// Package errors provides structured error types for historydag.
//
// This package defines error codes and types that enable:
//   - Distinguishing structural failures from caller mistakes
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages in the CLI and HTTP service
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The three domain codes mirror the failure taxonomy of the history DAG core:
//   - STRUCTURAL_VIOLATION: a DAG invariant is broken (clade overlap, cycle, ...)
//   - INCOMPARABLE_REFERENCE: merge or equality across DAGs that do not share a
//     reference sequence or a leaf set
//   - MALFORMED_EXCHANGE_FORM: a persisted form cannot be decoded, or an equality
//     check was requested on a form not marked as sorted
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStructural, "clade %s has no edges", clade)
//	if errors.Is(err, errors.ErrCodeStructural) {
//	    // Handle invariant violation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedForm, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// History DAG errors
	ErrCodeStructural    Code = "STRUCTURAL_VIOLATION"
	ErrCodeIncomparable  Code = "INCOMPARABLE_REFERENCE"
	ErrCodeMalformedForm Code = "MALFORMED_EXCHANGE_FORM"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSequence Code = "INVALID_SEQUENCE"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// HTTPStatus maps an error code to the HTTP status the query service responds with.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidSequence,
		ErrCodeInvalidName, ErrCodeMalformedForm:
		return 400
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return 404
	case ErrCodeIncomparable, ErrCodeStructural:
		return 409
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
