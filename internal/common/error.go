package common

import (
	"errors"
	"fmt"
)

// Error is a domain error with a message that is safe to show to API clients.
// It unwraps to one of the sentinel errors above, so errors.Is(err,
// ErrorValidation) and friends keep working after wrapping.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message of err if it is an *Error,
// and fallback otherwise.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}
