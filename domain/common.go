package domain

import (
	"errors"
)

const (
	RoleUser = "user"
)

var (
	MessageFailedBodyRequest = "failed to parse request body"
	MessageServerError       = "Server error"

	// Error kinds. Every domain error unwraps to exactly one of these.
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency unavailable")

	ErrParseUUID     = NewError(ErrValidation, "failed to parse UUID")
	ErrTokenNotFound = NewError(ErrAuth, "No token provided")
	ErrTokenInvalid  = NewError(ErrAuth, "Invalid token")
	ErrTokenExpired  = NewError(ErrAuth, "Token expired")
)

// Error is a user-facing error. Message is safe to return to clients.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
