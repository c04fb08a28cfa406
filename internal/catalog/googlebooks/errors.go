package googlebooks

import (
	"errors"
	"fmt"
)

// Sentinel errors for Google Books operations.
var (
	ErrNotFound    = errors.New("googlebooks: not found")
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrBadRequest  = errors.New("googlebooks: bad request")
	ErrServer      = errors.New("googlebooks: server error")
	// ErrParse means the provider answered but the body was not the
	// expected shape.
	ErrParse = errors.New("googlebooks: unparseable response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // "search" or "volume"
	Key string // keyword or volume ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("googlebooks %s [%s]: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, key string, err error) error {
	return &Error{Op: op, Key: key, Err: err}
}
