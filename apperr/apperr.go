// Package apperr holds the error kinds shared by the store, guard, handlers
// and payment orchestrator, and maps them to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

// Error kinds. Compare with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnavailable      = errors.New("service unavailable")
)

// Error carries a kind, a message safe to show to clients and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error       { return New(ErrValidation, msg) }
func NotFound(msg string) *Error         { return New(ErrNotFound, msg) }
func Conflict(msg string) *Error         { return New(ErrConflict, msg) }
func Forbidden(msg string) *Error        { return New(ErrForbidden, msg) }
func Unauthenticated(msg string) *Error  { return New(ErrUnauthenticated, msg) }
func CapacityExceeded(msg string) *Error { return New(ErrCapacityExceeded, msg) }

var statuses = []struct {
	kind   error
	status int
}{
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrValidation, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrCapacityExceeded, http.StatusBadRequest},
	{ErrInvalidSignature, http.StatusBadRequest},
	{ErrUnavailable, http.StatusServiceUnavailable},
}

// Status returns the HTTP status for err; unknown errors are 500.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text for err. Internal causes are never exposed.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if Status(err) >= http.StatusInternalServerError {
			return "Service temporarily unavailable"
		}
		return appErr.Message
	}
	return "Internal server error"
}
