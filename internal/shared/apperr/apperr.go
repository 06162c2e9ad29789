// Package apperr defines the error taxonomy shared by startup, the request
// handlers and the dependency clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfiguration      Kind = "ConfigurationError"
	KindServiceInit        Kind = "ServiceInitError"
	KindValidation         Kind = "ValidationError"
	KindServiceUnavailable Kind = "ServiceUnavailableError"
	KindAuth               Kind = "AuthError"
	KindRateLimit          Kind = "RateLimitError"
	KindUnknownAnalysis    Kind = "UnknownAnalysisError"
	KindStore              Kind = "StoreError"
	KindInternal           Kind = "InternalError"
)

// Status returns the HTTP status code a failure of this kind answers with.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Status returns the HTTP status for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

// New builds a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Sentinels for errors.Is checks.
var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrServiceInit        = &Error{Kind: KindServiceInit}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrStore              = &Error{Kind: KindStore}
)
