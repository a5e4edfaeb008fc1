package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNilReducer is returned by New when no reducer is given, and by a
	// combined reducer whose slice mapping contains a nil child.
	ErrNilReducer = errors.New("reducer is nil")

	// ErrInvalidListener is returned by Subscribe for a nil listener.
	ErrInvalidListener = errors.New("listener is nil")

	// ErrNestedDispatch is returned by Dispatch when called from a listener
	// under the RejectNested policy.
	ErrNestedDispatch = errors.New("dispatch called while notifying listeners")
)

// ReducerError reports a reducer failure during construction or dispatch.
// The store's state is unchanged and no listener was notified.
type ReducerError struct {
	// ActionType is the tag of the action being reduced.
	ActionType string

	// Err is the reducer's error.
	Err error
}

// Error implements the error interface.
func (e *ReducerError) Error() string {
	return fmt.Sprintf("reducer failed on %s: %v", e.ActionType, e.Err)
}

// Unwrap returns the reducer's error.
func (e *ReducerError) Unwrap() error {
	return e.Err
}

// SliceError reports which child of a combined reducer failed.
type SliceError struct {
	Slice string
	Err   error
}

// Error implements the error interface.
func (e *SliceError) Error() string {
	return fmt.Sprintf("slice %q: %v", e.Slice, e.Err)
}

// Unwrap returns the child reducer's error.
func (e *SliceError) Unwrap() error {
	return e.Err
}

// IsReducerError returns true if err is or wraps a *ReducerError.
func IsReducerError(err error) bool {
	var re *ReducerError
	return errors.As(err, &re)
}
