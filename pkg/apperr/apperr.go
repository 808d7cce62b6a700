// Package apperr defines the error taxonomy shared by all services:
// missing records, illegal state transitions, and store failures.
// Callers classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced game, contestant or session that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a state-transition violation, such as ending an
	// already-ended session or scoring an inactive one.
	ErrConflict = errors.New("conflict")
	// ErrPersistence marks a store that is unreachable or a failed transaction.
	ErrPersistence = errors.New("persistence failure")
)

// Wrap tags err with kind while keeping the original chain intact, so both
// errors.Is(err, kind) and errors.Is(err, original) hold.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Wrapf is Wrap with a formatted context message.
func Wrapf(kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), kind, err)
}
