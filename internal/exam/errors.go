package exam

import (
	"errors"
	"fmt"
)

// Business outcomes surfaced to the transport as ordinary responses.
var (
	// ErrUserUnknown: the access policy does not recognize the user.
	ErrUserUnknown = errors.New("unknown user")

	// ErrAccessDenied: the user may not take this test.
	ErrAccessDenied = errors.New("access denied")

	// ErrTestUnknown: the test is not present in the bank.
	ErrTestUnknown = errors.New("unknown test")

	// ErrNoOpenVariant: an answer arrived but no exam is in progress
	// for this (user, test), or no question has been issued yet.
	ErrNoOpenVariant = errors.New("no open variant")

	// ErrTestIsOpen: the user already has a different test in progress.
	ErrTestIsOpen = errors.New("another test is already in progress")
)

// CollaboratorError wraps an I/O failure from the result store or
// question source. It is logged and shown to clients as a generic
// server error; it never leaves the session table inconsistent.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func collabErr(op string, err error) error {
	return &CollaboratorError{Op: op, Err: err}
}
