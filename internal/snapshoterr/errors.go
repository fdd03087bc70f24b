// Package snapshoterr defines the typed error kinds surfaced by tool results.
package snapshoterr

import "fmt"

// Kind enumerates the stable error categories a tool call can fail with.
type Kind string

const (
	KindNoSession      Kind = "no_session"
	KindTabNotFound    Kind = "tab_not_found"
	KindRefNotFound    Kind = "ref_not_found"
	KindElementStale   Kind = "element_stale"
	KindNavigation     Kind = "navigation_failed"
	KindTimeout        Kind = "timeout"
	KindInvalidArgs    Kind = "invalid_args"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindDriver         Kind = "driver_error"
	KindInternal       Kind = "internal"
)

// Error wraps a Kind with a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, otherwise KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if as(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func as(err error, target **Error) bool {
	for err != nil {
		if se, ok := err.(*Error); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
