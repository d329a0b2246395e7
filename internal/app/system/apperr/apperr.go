// internal/app/system/apperr/apperr.go

// Package apperr defines the error type that domain code returns to HTTP
// handlers. An Error carries the HTTP status it should surface as plus a
// caller-facing message; the wrapped cause stays internal and is only
// logged, never serialized.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error with an HTTP status mapping.
type Error struct {
	Status  int
	Message string
	Err     error // underlying cause, not exposed to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with an explicit status.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap attaches a cause to an Error. The cause is preserved for errors.Is
// and logging but never shown to the client.
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// BadRequest reports invalid input or a business-rule violation.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden reports a valid identity lacking the required role.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound reports a missing entity.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// TooManyRequests reports a rate-limited client.
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Internal wraps an unexpected failure. The cause is kept for logs; the
// client only ever sees the generic message.
func Internal(err error) *Error {
	return Wrap(http.StatusInternalServerError, "internal server error", err)
}

// Upstream wraps a failure from an external collaborator (video host,
// storage, OTP provider). Surfaces as 502 so it is distinguishable from
// our own faults in logs and monitors.
func Upstream(service string, err error) *Error {
	return Wrap(http.StatusBadGateway, service+" request failed", err)
}

// StatusOf extracts the HTTP status from an error chain. Unknown errors
// map to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the caller-facing message from an error chain.
// Unknown errors map to a generic message so internals never leak.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
