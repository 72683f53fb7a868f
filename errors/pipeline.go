package errors

import (
	// Go Internal Packages
	"fmt"
)

// ErrWriteAborted is returned when an in-flight write is cut off by a forced shutdown.
// The record is not acknowledged upstream and will be redelivered.
var ErrWriteAborted = New("write aborted")

// DecodeError reports a payload that could not be turned into a transaction.
type DecodeError struct {
	Reason string
	Err    error
}

func NewDecodeError(reason string, err error) *DecodeError {
	return &DecodeError{Reason: reason, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PredicateError reports a predicate that failed or panicked.
type PredicateError struct {
	Predicate string
	Err       error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate %s: %v", e.Predicate, e.Err)
}

func (e *PredicateError) Unwrap() error { return e.Err }

// WriteError reports a failed write to the backing store. Exhausted is set once
// every retry attempt has been used.
type WriteError struct {
	Attempts  int
	Exhausted bool
	Err       error
}

func (e *WriteError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("write failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("write attempt %d failed: %v", e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConnectionError reports a connection failure to a named resource.
type ConnectionError struct {
	Resource string
	Fatal    bool
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.Resource, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
