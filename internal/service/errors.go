package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. Transports map kinds to their own
// status codes; the service layer knows nothing about HTTP.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is the structured failure returned by every service operation.
// Code is a stable machine readable identifier, Message is meant for
// humans. Err keeps the underlying cause of internal failures for
// logging and is never shown to clients.
type Error struct {
	Kind    Kind
	Code    string
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

// KindOf returns the kind of err, treating foreign errors as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, or "internal_error" for foreign errors.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return codeInternal
}

const codeInternal = "internal_error"

func validationError(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func notFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Code: codeInternal, Message: "internal server error", Err: err}
}

// passThrough keeps service errors produced inside a transaction intact
// and wraps anything else as internal.
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError(err)
}
