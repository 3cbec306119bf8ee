package syncstore

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNetwork    = errors.New("request failed")
	ErrDecode     = errors.New("unexpected response")
	ErrNotFound   = errors.New("record not found")
)

// Operations reported in Error.Op
const (
	OpRefresh = "refresh"
	OpCreate  = "create"
	OpUpdate  = "update"
)

// Error describes a failed store operation
type Error struct {
	Op         string
	Collection string
	Kind       error // one of the Err* sentinels
	Err        error // underlying cause, may be nil
	// Stored is set when a create or update was accepted by the remote and
	// only the re-fetch that follows it failed.
	Stored bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Collection, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Collection, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Stored reports whether err came from a create or update whose write reached
// the remote. The record exists there; only the local copy is stale.
func Stored(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Stored
}
