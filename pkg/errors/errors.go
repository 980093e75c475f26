package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies failures the console surfaces to operators.
type Kind string

const (
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindForbidden             Kind = "FORBIDDEN"
	KindNotFound              Kind = "NOT_FOUND"
	KindValidationFailed      Kind = "VALIDATION_FAILED"
	KindServerError           Kind = "SERVER_ERROR"
	KindLocalValidationFailed Kind = "LOCAL_VALIDATION_FAILED"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Err != nil && e.Message == "":
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message == "":
		return strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors of the same kind so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code Kind, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code Kind, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors, one per kind.
var (
	ErrUnauthorized           = New(KindUnauthorized, http.StatusUnauthorized, "session expired, please log in again")
	ErrForbidden              = New(KindForbidden, http.StatusForbidden, "you are not allowed to perform this action")
	ErrNotFound               = New(KindNotFound, http.StatusNotFound, "resource not found")
	ErrValidation             = New(KindValidationFailed, http.StatusBadRequest, "validation failed")
	ErrServer                 = New(KindServerError, http.StatusInternalServerError, "server error")
	ErrLocalValidation        = New(KindLocalValidationFailed, 0, "please correct the highlighted fields")
	ErrNotAuthenticated       = New(KindUnauthorized, http.StatusUnauthorized, "not logged in")
	ErrInstitutionScopeLocked = New(KindLocalValidationFailed, 0, "institution is fixed by your session")
)

// FromResponse maps a backend status and message to a typed error.
func FromResponse(status int, message string) *Error {
	message = strings.TrimSpace(message)
	var base *Error
	switch {
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusForbidden:
		base = ErrForbidden
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		base = ErrValidation
	default:
		base = ErrServer
	}
	clone := *base
	clone.Status = status
	clone.Message = message
	return &clone
}

// Transport wraps a network failure as a server error without a backend message.
func Transport(err error) *Error {
	return &Error{Code: KindServerError, Status: 0, Err: err}
}

// Local builds a local validation failure carrying the provided message.
func Local(message string, err error) *Error {
	return Wrap(err, KindLocalValidationFailed, 0, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, KindServerError, ErrServer.Status, "")
}

// KindOf reports the kind of err, or an empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Code
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Banner returns the operator-facing text for err: the backend or local
// message verbatim when present, otherwise fallback.
func Banner(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if e := FromError(err); e != nil && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fallback
}
