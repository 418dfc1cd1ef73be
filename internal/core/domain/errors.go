package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the core wraps exactly one of these,
// so callers classify with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error carries a stable kind plus a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated causes. All of them map to the same client-visible status,
// but stay distinguishable for logging and tests.
var (
	ErrTokenMissing     = &Error{Kind: ErrUnauthenticated, Message: "token not found"}
	ErrInvalidSignature = &Error{Kind: ErrUnauthenticated, Message: "token is not valid"}
	ErrTokenExpired     = &Error{Kind: ErrUnauthenticated, Message: "token has expired"}
	ErrMalformedClaims  = &Error{Kind: ErrUnauthenticated, Message: "token subject not found"}
	ErrUnknownAccount   = &Error{Kind: ErrUnauthenticated, Message: "account not found"}
	ErrAccountDeleted   = &Error{Kind: ErrUnauthenticated, Message: "account is deleted"}
	ErrBadCredentials   = &Error{Kind: ErrUnauthenticated, Message: "invalid email and/or password"}
)

// Store-level uniqueness backstop.
var ErrDuplicateValue = &Error{Kind: ErrConflict, Message: "this value already exists or violates a database constraint"}

// KindOf returns the kind sentinel wrapped by err, or nil when err is not a
// classified core error.
func KindOf(err error) error {
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrBadRequest, ErrStoreUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
