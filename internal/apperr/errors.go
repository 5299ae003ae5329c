// Package apperr provides the error taxonomy shared by the object store,
// auth core, and HTTP surface.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies which class of failure an Error belongs to.
type Code string

const (
	CodeNotFound       Code = "NOT_FOUND"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeConflict       Code = "CONFLICT"
	CodeInvalid        Code = "INVALID"
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeReplay         Code = "REPLAY"
	CodeInternal       Code = "INTERNAL"
)

// Error is the application error type used throughout Anchor. It carries a
// Code so callers at the HTTP and CLI boundary can map it to a status code
// or exit code without string matching.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetails attaches structured context to the error (e.g. the repo name).
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newErr(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error       { return newErr(CodeNotFound, message, nil) }
func Unauthenticated(message string) *Error { return newErr(CodeUnauthenticated, message, nil) }
func Forbidden(message string) *Error      { return newErr(CodeForbidden, message, nil) }
func Conflict(message string) *Error       { return newErr(CodeConflict, message, nil) }
func Invalid(message string) *Error        { return newErr(CodeInvalid, message, nil) }
func RateLimited(message string) *Error    { return newErr(CodeRateLimited, message, nil) }
func Replay(message string) *Error         { return newErr(CodeReplay, message, nil) }
func Internal(message string) *Error       { return newErr(CodeInternal, message, nil) }

// Wrap annotates an underlying error with an Anchor error code.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return newErr(code, message, err)
}

// Is reports whether err carries the given code, unwrapping through
// standard library error chains.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the Code of err, or CodeInternal if err is not an *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
