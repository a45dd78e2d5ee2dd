package core

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the boundary can map them to a response
// without inspecting messages.
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindAuthFailure Kind = "auth_failure"
	KindPersistence Kind = "persistence_failure"
)

// Error carries a Kind, a message safe to show to the user and an optional
// underlying cause.
type Error struct {
	Kind    Kind
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

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrAuthFailure = &Error{Kind: KindAuthFailure}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// Validation wraps a field validation error. The cause's text becomes the message.
func Validation(err error) error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// Invalid builds a validation error from a plain message.
func Invalid(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func AuthFailure(msg string) error {
	return &Error{Kind: KindAuthFailure, Message: msg}
}

// Persistence hides a store failure behind a generic message.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: op + " failed", Err: err}
}

// KindOf reports the Kind of err. Unclassified errors are persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
