package domain

import (
	"errors"

	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// Error kinds. Callers branch on them with errors.Is.
var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternal      = errors.New("internal error")
)

var defaultMessages = map[error]string{
	ErrHabitNotFound: i18n.MsgHabitNotFound,
	ErrForbidden:     i18n.MsgForbidden,
	ErrValidation:    i18n.MsgInvalidData,
	ErrUnauthorized:  i18n.MsgUnauthorized,
	ErrInternal:      i18n.MsgInternal,
}

// Error is a classified failure whose Message is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	if msg == "" {
		msg = defaultMessages[kind]
	}
	return &Error{Kind: kind, Message: msg}
}

// NewHabitNotFoundError reports a habit id with no stored record.
func NewHabitNotFoundError(msg string) *Error { return newError(ErrHabitNotFound, msg) }

// NewForbiddenError reports a habit that exists but belongs to another user.
func NewForbiddenError(msg string) *Error { return newError(ErrForbidden, msg) }

// NewValidationError reports input rejected by a service or schema rule.
func NewValidationError(msg string) *Error { return newError(ErrValidation, msg) }

// NewUnauthorizedError reports a request without a usable identity.
func NewUnauthorizedError(msg string) *Error { return newError(ErrUnauthorized, msg) }

// NewInternalError replaces an unexpected failure. The message must not carry
// driver or stack detail.
func NewInternalError(msg string) *Error { return newError(ErrInternal, msg) }

// IsKnown reports whether err already belongs to a kind that is surfaced to
// callers unchanged.
func IsKnown(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrHabitNotFound) ||
		errors.Is(err, ErrForbidden)
}

// MessageOf returns the caller-safe message carried by err, or "" when err is
// not a classified *Error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
