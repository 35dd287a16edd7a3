// Package apperror defines the error kinds returned by services and the HTTP
// status each kind maps to at the handler boundary.
//
// Services return *Error values; handlers inspect them with errors.Is against
// the sentinel values below or with errors.As to read the Kind directly.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindInvalidToken        Kind = "INVALID_TOKEN"
	KindMissingCredential   Kind = "MISSING_CREDENTIAL"
	KindMalformedCredential Kind = "MALFORMED_CREDENTIAL"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindDuplicateRating     Kind = "DUPLICATE_RATING"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindInternal            Kind = "INTERNAL"
)

// HTTPStatus returns the status code a kind is reported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicateRating:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidToken, KindMissingCredential, KindMalformedCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Kind, so callers can compare against
// the sentinels regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrValidation          = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrInvalidToken        = &Error{Kind: KindInvalidToken, Message: "invalid or expired token"}
	ErrMissingCredential   = &Error{Kind: KindMissingCredential, Message: "missing Authorization header"}
	ErrMalformedCredential = &Error{Kind: KindMalformedCredential, Message: "invalid Authorization format"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict            = &Error{Kind: KindConflict, Message: "conflict"}
	ErrDuplicateRating     = &Error{Kind: KindDuplicateRating, Message: "user already rated this book"}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable, Message: "service temporarily unavailable"}
	ErrInternal            = &Error{Kind: KindInternal, Message: "internal error"}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unavailable wraps a store or image failure as a retryable upstream error.
func Unavailable(cause error) *Error {
	return ErrUpstreamUnavailable.WithCause(cause)
}

// KindOf returns the kind carried by err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message carried by err. Unclassified
// errors never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}
