// Package failure defines the error record shared by the query pipeline and
// the endpoint shapers. Expected conditions such as an empty result set are
// reported as values of this type rather than panics.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// UnexpectedFailure covers driver errors, malformed files and anything
	// not listed below.
	UnexpectedFailure Kind = iota
	// NotFound means the target is absent or the result set is empty.
	NotFound
	// ConnectionFailure means the database could not be reached.
	ConnectionFailure
	// AmbiguousResult means a by-id lookup returned more than one row.
	AmbiguousResult
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case ConnectionFailure:
		return "connection_failure"
	case AmbiguousResult:
		return "ambiguous_result"
	default:
		return "unexpected_failure"
	}
}

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	// Code is the driver-supplied error code, if any.
	Code  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil && e.Message == "" {
		return e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *Error) Unwrap() error { return e.cause }

// ItemNotFound reports an empty listing of item.
func ItemNotFound(item string) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("No instance of %s was found in the database.", item)}
}

// ItemNotFoundWithID reports that no item with the given id exists. The id
// is always named, including zero.
func ItemNotFoundWithID(item string, id int) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("No instance of %s was found in the database with id %d.", item, id)}
}

// NotFoundf reports an absent target with a free-form message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Connection wraps a cause that prevented a connection from being made.
func Connection(cause error) *Error {
	msg := "connection failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: ConnectionFailure, Message: msg, cause: cause}
}

// Unexpected wraps any other cause.
func Unexpected(cause error) *Error {
	return &Error{Kind: UnexpectedFailure, cause: cause}
}

// Driver wraps an execution error reported by a database driver together
// with the driver's own code and message.
func Driver(cause error, code, message string) *Error {
	return &Error{Kind: UnexpectedFailure, Code: code, Message: message, cause: cause}
}

// Unexpectedf builds an unexpected failure from a formatted message.
func Unexpectedf(format string, args ...any) *Error {
	return &Error{Kind: UnexpectedFailure, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a failure of kind k.
func Is(err error, k Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == k
}
