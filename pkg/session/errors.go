package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an identity that never registered, or an attempt
	// that is unknown, already used or expired.
	ErrNotFound = errors.New("not found")

	// ErrRejected is returned when a response fails verification.
	// It carries no information about which check failed.
	ErrRejected = errors.New("rejected")
)

// Error is returned by Store operations. It records the operation, the identity or
// attempt id it concerns, and wraps one of the sentinel errors.
type Error struct {
	// Op is the operation that failed
	Op string
	// ID is the identity or attempt id the operation was called with
	ID string
	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("session: %s %q: %s", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(op, id string) error {
	return &Error{Op: op, ID: id, Err: ErrNotFound}
}
