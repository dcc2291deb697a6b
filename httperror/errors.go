// Package httperror provides HTTP error types and the translation of
// pipeline failures into them.
package httperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shipq/catalogapi/failure"
)

// ConnectionMessage prefixes the cause of a database connection failure.
const ConnectionMessage = "There was an error connecting to the database"

// Error implements the error interface with HTTP status code support.
type Error struct {
	code    int
	message string
	cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the HTTP status code.
func (e *Error) Code() int { return e.code }

// Message returns the error message without the cause.
func (e *Error) Message() string { return e.message }

// Unwrap returns the underlying cause for errors.As/errors.Is support.
func (e *Error) Unwrap() error { return e.cause }

// New creates a new HTTP error with the given code and message.
func New(code int, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap wraps an underlying error with an HTTP error.
func Wrap(code int, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return &Error{code: http.StatusBadRequest, message: message}
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	return &Error{code: http.StatusNotFound, message: message}
}

// Translate maps err to the HTTP error returned to the client.
//
//   - *Error values pass through unchanged.
//   - failure.NotFound becomes 404 with the failure message.
//   - failure.ConnectionFailure becomes 500 with the cause after ConnectionMessage.
//   - Driver failures become 500 naming the driver code and message.
//   - Anything else becomes 500 with the stringified error.
func Translate(err error) *Error {
	var he *Error
	if errors.As(err, &he) {
		return he
	}

	var fe *failure.Error
	if !errors.As(err, &fe) {
		return Wrap(http.StatusInternalServerError, err.Error(), err)
	}

	switch fe.Kind {
	case failure.NotFound:
		return Wrap(http.StatusNotFound, fe.Error(), err)
	case failure.ConnectionFailure:
		return Wrap(http.StatusInternalServerError, fmt.Sprintf("%s: %s", ConnectionMessage, fe.Error()), err)
	default:
		if fe.Code != "" {
			return Wrap(http.StatusInternalServerError, fmt.Sprintf("Database Error, code %s, message %s", fe.Code, fe.Error()), err)
		}
		return Wrap(http.StatusInternalServerError, fe.Error(), err)
	}
}
