// Package apperr defines the error kinds shared by the lifecycle and auth
// managers. Each kind has a sentinel so callers can branch with errors.Is,
// while *Error carries the user-facing message and, for validation failures,
// the per-field messages.
package apperr

import (
	"errors"
	"net/http"
)

// Kind identifies a class of failure.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_FAILURE"
	KindNotFound           Kind = "NOT_FOUND"
	KindAccessDenied       Kind = "ACCESS_DENIED"
	KindPersistence        Kind = "PERSISTENCE_FAILURE"
	KindInvalidAssociation Kind = "INVALID_ASSOCIATION"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindRegistration       Kind = "REGISTRATION_FAILURE"
	KindApplication        Kind = "APPLICATION_FAILURE"
)

// Sentinels for errors.Is. They compare by kind only.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAccessDenied       = &Error{Kind: KindAccessDenied}
	ErrPersistence        = &Error{Kind: KindPersistence}
	ErrInvalidAssociation = &Error{Kind: KindInvalidAssociation}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrRegistration       = &Error{Kind: KindRegistration}
	ErrApplication        = &Error{Kind: KindApplication}
)

// FieldError is a single failed validation rule.
type FieldError struct {
	Field      string `json:"field"`
	Validation string `json:"validation"`
	Message    string `json:"message"`
}

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	// Status is only consulted for KindApplication.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus maps the kind to the status the HTTP boundary responds with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidAssociation, KindInvalidCredentials, KindRegistration:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindPersistence:
		return http.StatusInternalServerError
	case KindApplication:
		if e.Status != 0 {
			return e.Status
		}
	}
	return http.StatusInternalServerError
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

func InvalidAssociation(message string) *Error {
	return &Error{Kind: KindInvalidAssociation, Message: message}
}

// InvalidCredentials wraps cause so callers can tell the "no such account"
// case from a password mismatch with errors.Is.
func InvalidCredentials(message string, cause error) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message, Cause: cause}
}

func Registration(message string, cause error) *Error {
	return &Error{Kind: KindRegistration, Message: message, Cause: cause}
}

func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func Application(status int, message string) *Error {
	return &Error{Kind: KindApplication, Message: message, Status: status}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasField reports whether a validation error names field with the given rule.
func HasField(err error, field, validation string) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field && f.Validation == validation {
			return true
		}
	}
	return false
}
