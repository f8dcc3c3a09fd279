package apperrors

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup of a window, app or user record that
// does not exist. Registry operations that are specified as silent
// no-ops never return it; loud callers (app launch, server store) do.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ConflictError reports an optimistic-lock version mismatch or a
// duplicate unique registration. Actual carries the version the server
// holds so the caller can refetch.
type ConflictError struct {
	Resource string
	Expected int
	Actual   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s version conflict: expected %d, have %d", e.Resource, e.Expected, e.Actual)
}

// ValidationError reports a malformed payload field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError wraps a failed or timed-out sync call. The persistence
// bridge downgrades it to a logged warning; it must never reach the UI.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}

func IsNetwork(err error) bool {
	var t *NetworkError
	return errors.As(err, &t)
}
