package domain

import "errors"

// ErrUnsupportedModel reports an explicit model override that names no
// known strategy.
var ErrUnsupportedModel = errors.New("unsupported recommendation model")

// ErrAssignmentNotFound is returned by assignment stores when a user
// has no row yet.
var ErrAssignmentNotFound = errors.New("assignment not found")

// InvalidArgumentError reports malformed caller input: non-positive
// user ids, empty model lists, missing event types.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	return e.Msg
}

func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// StoreUnavailableError wraps any backing-store failure. Read paths
// recover from it locally; write paths surface it to the caller.
type StoreUnavailableError struct {
	Store string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return e.Store + " unavailable: " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}
