package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidArrow  = "INVALID_ARROW"
	ErrCodeUnreachable   = "UNREACHABLE_STATE"
	ErrCodeScopeClosed   = "SCOPE_CLOSED"
	ErrCodeDecode        = "DECODE_ERROR"
	ErrCodeInterpolation = "INTERPOLATION_ERROR"
	ErrCodeExecution     = "EXECUTION_ERROR"
	ErrCodeGuard         = "GUARD_ERROR"
)

// Error is the structured error type for all seqdiag operations.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Path    string         `json:"path,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithPath attaches the document path of the offending element.
// An existing path is kept so the innermost location wins.
func (e *Error) WithPath(path string) *Error {
	if e.Path == "" {
		e.Path = path
	}
	return e
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// HasCode reports whether err is an *Error carrying the given code.
func HasCode(err error, code string) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}
