package store

import (
	"errors"
	"fmt"
)

// Error is a persistence error. Services translate it into a domain error.
type Error struct {
	Kind    string // stable identifier, e.g. "not_found"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so wrapped copies still compare
// equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// WithMessage returns a copy with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg, Err: e.Err}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Kind:    "not_found",
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Kind:    "already_exists",
		Message: "resource already exists",
	}

	// ErrHasDependents is returned when a delete is refused because other
	// rows still reference the record. Callers must delete dependents first.
	ErrHasDependents = &Error{
		Kind:    "has_dependents",
		Message: "resource is still referenced",
	}

	ErrInvalidInput = &Error{
		Kind:    "invalid_input",
		Message: "invalid input",
	}
)
