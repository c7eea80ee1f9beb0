// Package apperr defines the error kinds surfaced through the response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "validation_error"
	KindAuth       Kind = "unauthorized"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream_error"
	KindInternal   Kind = "internal_error"
)

// Error carries a kind, the envelope code and a client-safe message.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, code int, message string, cause []error) *Error {
	e := &Error{Kind: kind, Code: code, Message: message}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

func Validation(message string, cause ...error) *Error {
	return newError(KindValidation, http.StatusBadRequest, message, cause)
}

func Unauthorized(message string, cause ...error) *Error {
	return newError(KindAuth, http.StatusUnauthorized, message, cause)
}

func Forbidden(message string, cause ...error) *Error {
	return newError(KindForbidden, http.StatusForbidden, message, cause)
}

func NotFound(message string, cause ...error) *Error {
	return newError(KindNotFound, http.StatusNotFound, message, cause)
}

// Conflict is reported as 400, the envelope has no 409.
func Conflict(message string, cause ...error) *Error {
	return newError(KindConflict, http.StatusBadRequest, message, cause)
}

// Upstream failures during authentication surface as 401, elsewhere as 500.
func Upstream(code int, message string, cause ...error) *Error {
	return newError(KindUpstream, code, message, cause)
}

func Internal(message string, cause ...error) *Error {
	return newError(KindInternal, http.StatusInternalServerError, message, cause)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// IsDuplicateKey matches unique violations from Postgres and SQLite drivers
// when GORM's error translation is not available.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}
