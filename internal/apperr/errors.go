package apperr

import (
	"errors"
	"net/http"
)

// Failure kinds shared by every feature package. Services wrap one of these
// with a user-facing message; the HTTP layer only looks at the kind.
var (
	ErrValidation            = errors.New("validation error")
	ErrConflict              = errors.New("conflict")
	ErrInvalidCode           = errors.New("invalid code")
	ErrExpired               = errors.New("expired")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNoPendingVerification = errors.New("no pending verification")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotOwner              = errors.New("not owner")
	ErrNotificationFailure   = errors.New("notification failure")
	ErrInternal              = errors.New("internal error")
)

// Error carries a failure kind, the message shown to the client and the
// underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports kind membership so callers can use errors.Is(err, apperr.ErrConflict).
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a client message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logging.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) *Error { return New(ErrValidation, message) }

func NotFound(message string) *Error { return New(ErrNotFound, message) }

func Forbidden(message string) *Error { return New(ErrForbidden, message) }

func NotOwner(message string) *Error { return New(ErrNotOwner, message) }

func Unauthorized(message string) *Error { return New(ErrUnauthorized, message) }

var statusByKind = []struct {
	kind   error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrConflict, http.StatusBadRequest},
	{ErrInvalidCode, http.StatusBadRequest},
	{ErrExpired, http.StatusBadRequest},
	{ErrInvalidCredentials, http.StatusBadRequest},
	{ErrNoPendingVerification, http.StatusBadRequest},
	{ErrInvalidOrExpiredToken, http.StatusBadRequest},
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotOwner, http.StatusForbidden},
	{ErrNotificationFailure, http.StatusInternalServerError},
	{ErrInternal, http.StatusInternalServerError},
}

// Status returns the HTTP status and client message for err. The boolean is
// false when err does not belong to the taxonomy and should be treated as an
// unexpected fault.
func Status(err error) (int, string, bool) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "Server error", false
	}
	for _, m := range statusByKind {
		if errors.Is(appErr.Kind, m.kind) {
			return m.status, appErr.Message, true
		}
	}
	return http.StatusInternalServerError, "Server error", false
}
