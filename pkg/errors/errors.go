// Package errors provides structured error types for the railcdl application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// The analysis packages (network, cdl) return plain sentinel errors; use
// [FromCore] to classify them at the boundary.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid node id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "failed to parse %s", path)
package errors

import (
	"errors"
	"fmt"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidThreshold Code = "INVALID_THRESHOLD"
	ErrCodeInvalidNetwork   Code = "INVALID_NETWORK"

	// Analysis errors
	ErrCodeCycle       Code = "CYCLE_DETECTED"
	ErrCodeNestedMerge Code = "NESTED_MERGE"
	ErrCodeConflict    Code = "CONFLICT"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeStationNotFound Code = "STATION_NOT_FOUND"

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
// For *Error types, returns the message followed by the cause if any.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// coreCodes maps the sentinels of the analysis packages onto codes.
var coreCodes = []struct {
	target error
	code   Code
}{
	{network.ErrInvalidNodeID, ErrCodeInvalidNetwork},
	{network.ErrDuplicateNode, ErrCodeInvalidNetwork},
	{network.ErrUnknownNode, ErrCodeInvalidNetwork},
	{network.ErrNegativeLength, ErrCodeInvalidNetwork},
	{network.ErrInvalidKind, ErrCodeInvalidNetwork},
	{cdl.ErrInvalidThreshold, ErrCodeInvalidThreshold},
	{cdl.ErrCycleDetected, ErrCodeCycle},
	{cdl.ErrNestedMerge, ErrCodeNestedMerge},
	{cdl.ErrDuplicateSignal, ErrCodeConflict},
	{cdl.ErrNotApproach, ErrCodeInternal},
}

// FromCore classifies an error returned by the network or cdl packages.
// Errors that already carry a code are returned unchanged, nil stays nil,
// and unrecognised errors become ErrCodeInternal.
func FromCore(err error) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}
	for _, c := range coreCodes {
		if errors.Is(err, c.target) {
			return &Error{Code: c.code, Message: err.Error(), Cause: c.target}
		}
	}
	return Wrap(ErrCodeInternal, err, "unexpected error")
}
