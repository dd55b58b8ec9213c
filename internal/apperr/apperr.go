// Package apperr defines the error kinds that services return and the
// request boundary turns into client responses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error; the HTTP layer maps each kind to a status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotSeller
	KindAlreadySeller
	KindForbidden
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotSeller:
		return "not_seller"
	case KindAlreadySeller:
		return "already_seller"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Error is a client-facing failure. Field is set for validation errors.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation reports a bad value for field.
func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// NotSeller reports that the caller has no seller profile.
func NotSeller(msg string) error { return &Error{Kind: KindNotSeller, Message: msg} }

// AlreadySeller reports a second seller registration.
func AlreadySeller(msg string) error { return &Error{Kind: KindAlreadySeller, Message: msg} }

// Forbidden reports an action on an object the caller does not own.
func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound reports a missing object.
func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

// Unauthorized reports missing or bad credentials.
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of kind k.
func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
