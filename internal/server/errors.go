package server

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service errors so transports can map them to
// protocol error codes without string matching.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindUnauthenticated
	KindFailedPrecondition
)

// String returns the wire code for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindFailedPrecondition:
		return "failed_precondition"
	default:
		return "internal"
	}
}

// Error is a service error with a kind and a human-readable message
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFoundf creates a not-found error
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PermissionDeniedf creates a permission-denied error
func PermissionDeniedf(format string, args ...any) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticatedf creates an unauthenticated error
func Unauthenticatedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

// FailedPreconditionf creates a failed-precondition error
func FailedPreconditionf(format string, args ...any) *Error {
	return &Error{Kind: KindFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain. Errors that are not
// service errors report KindInternal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
