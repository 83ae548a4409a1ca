package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets an id or index that does
// not exist in the ledger.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or missing field on input. The engine
// raises it instead of silently repairing caller mistakes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StateError reports an operation that is valid in general but not for the
// entity's current state, e.g. deleting an already-deleted transaction or
// contributing to an unset goal.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func stateErr(op, format string, args ...any) error {
	return &StateError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
