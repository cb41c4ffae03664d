package types

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on failure category
// without string matching, mirroring the teacher's wrapped sentinel
// errors but with a closed enum instead of ad-hoc sentinel vars.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindPermissionDenied  Kind = "permission_denied"
	KindCorrupt           Kind = "corrupt"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindTimeout           Kind = "timeout"
	KindIOError           Kind = "io_error"
	KindInternal          Kind = "internal"
)

// Error is the common error type returned by every package in this
// module. It carries a Kind for programmatic dispatch, a Component
// naming the package that raised it, and wraps an optional underlying
// cause.
type Error struct {
	Kind      Kind
	Component string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an *Error with no wrapped cause.
func NewError(kind Kind, component, message string) *Error {
	return &Error{Kind: kind, Component: component, Message: message}
}

// Wrap builds an *Error that wraps cause, following the teacher's
// "failed to X: %w" convention but as a typed value instead of a bare
// fmt.Errorf string.
func Wrap(kind Kind, component, message string, cause error) *Error {
	return &Error{Kind: kind, Component: component, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is, or wraps, an *Error.
// Unrecognized errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func IsInvalidInput(err error) bool      { return isKind(err, KindInvalidInput) }
func IsNotFound(err error) bool          { return isKind(err, KindNotFound) }
func IsConflict(err error) bool          { return isKind(err, KindConflict) }
func IsCapacityExceeded(err error) bool  { return isKind(err, KindCapacityExceeded) }
func IsPermissionDenied(err error) bool  { return isKind(err, KindPermissionDenied) }
func IsCorrupt(err error) bool           { return isKind(err, KindCorrupt) }
func IsUnsupportedVersion(err error) bool { return isKind(err, KindUnsupportedVersion) }
func IsTimeout(err error) bool           { return isKind(err, KindTimeout) }
func IsIOError(err error) bool           { return isKind(err, KindIOError) }
func IsInternal(err error) bool          { return isKind(err, KindInternal) }
