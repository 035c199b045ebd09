// Package apperror defines the error kinds surfaced to API callers.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindAuth
	KindNotFound
	KindStorage
	KindUpstream
	KindRateLimited
)

// Error is a classified failure with a machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func Validation(code, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

func Conflict(code, field, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Field: field, Message: message}
}

func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func Auth(code, message string) *Error {
	return &Error{Kind: KindAuth, Code: code, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: message}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Code: "server_error", Message: "Server error", Err: err}
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Code: "upstream_error", Message: message, Err: err}
}

var (
	ErrInvalidCredentials = Auth("invalid_credentials", "Invalid credentials")
	ErrMissingToken       = Auth("missing_token", "Access denied. No token provided.")
	ErrExpiredToken       = Auth("expired_token", "Token expired. Please log in again.")
	ErrInvalidToken       = Auth("invalid_token", "Invalid token. Please log in again.")
	ErrMalformedToken     = Auth("malformed_token", "Malformed token. Please log in again.")
	ErrNotOwner           = Forbidden("unauthorized", "You are not allowed to modify this post")
	ErrTooManyRequests    = &Error{Kind: KindRateLimited, Code: "too_many_requests", Message: "Too many requests, please try again later."}
)

// From extracts an *Error from err, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
