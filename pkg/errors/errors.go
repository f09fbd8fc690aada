// Package errors provides structured error types for familygraph.
//
// Errors carry a machine-readable [Code] alongside a human-readable message so
// the CLI and the HTTP API can map failures to exit codes and status codes
// without string matching.
//
// # Error Codes
//
//   - INVALID_*: rejected input (records, settings values, flags)
//   - UNRESOLVED_EDGE: a relationship whose endpoint is not a known member
//   - SOURCE_UNAVAILABLE: the data source could not be reached or read
//   - NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED: as named
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSetting, "unknown theme %q", v)
//	if errors.Is(err, errors.ErrCodeInvalidSetting) {
//	    // show the allowed values
//	}
//
//	err := errors.Wrap(errors.ErrCodeSourceUnavailable, origErr, "fetch profiles")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSetting Code = "INVALID_SETTING"
	ErrCodeInvalidProfile Code = "INVALID_PROFILE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Graph configuration errors
	ErrCodeUnresolvedEdge Code = "UNRESOLVED_EDGE"

	// Data source errors
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	ErrCodeNotFound          Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

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
// It walks the chain and returns on the first *Error found.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSetting, ErrCodeInvalidProfile,
		ErrCodeInvalidFormat, ErrCodeUnresolvedEdge:
		return 400
	case ErrCodeNotFound:
		return 404
	case ErrCodeUnsupported:
		return 501
	case ErrCodeSourceUnavailable:
		return 503
	default:
		return 500
	}
}
