package progress

import "fmt"

// Code classifies store failures.
type Code string

const (
	CodeNotFound    Code = "not_found"
	CodeInvalid     Code = "invalid"
	CodeUnavailable Code = "unavailable"
)

// Error is a store error with a classification code.
type Error struct {
	Code    Code   // failure class
	Message string // short description
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same code, so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    CodeNotFound,
		Message: "progress not found",
	}

	ErrInvalid = &Error{
		Code:    CodeInvalid,
		Message: "invalid progress record",
	}

	ErrUnavailable = &Error{
		Code:    CodeUnavailable,
		Message: "progress store unavailable",
	}
)
