// Package errors provides structured error types for the Nexus CLI.
//
// Every failure in the workspace collapses into one of three tiers:
//
//   - configuration errors (missing credential): raised before any network
//     call, never retried, exit code 2.
//   - transient errors (429, 5xx, timeout): retried with backoff, then fatal.
//   - permanent API errors (other 4xx, bad user input): immediately fatal.
//
// Error codes are machine-readable so the --json output mode can let a
// calling agent branch programmatically.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors (local, pre-network)
	ErrCodeConfig            Code = "CONFIG_ERROR"
	ErrCodeMissingCredential Code = "MISSING_CREDENTIAL"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"

	// Remote API errors
	ErrCodeAPI          Code = "API_ERROR"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeConflict     Code = "CONFLICT"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Transient errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional cause, and an
// optional one-line fix hint shown to the user.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Hint    string // Optional fix hint ("set SLACK_USER_TOKEN in .env")
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

// WithHint attaches a fix hint and returns the error for chaining.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error chain holds no *Error.
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

// Hint extracts the fix hint from an error chain, if any.
func Hint(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// APIError carries the HTTP status and parsed error payload of a failed
// request after retries (if any) were exhausted.
type APIError struct {
	StatusCode int
	Body       string // raw response body, truncated by the client
	Endpoint   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api error %d on %s: %s", e.StatusCode, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("api error %d on %s", e.StatusCode, e.Endpoint)
}

// StatusOf returns the HTTP status carried by err, or 0 if the chain holds
// no *APIError.
func StatusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
