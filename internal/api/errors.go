package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller's recovery policy.
type Kind string

const (
	// KindValidation is a client-side rejection; no network call was made.
	KindValidation Kind = "VALIDATION"
	// KindAuthExpired means the backend no longer accepts our credential.
	KindAuthExpired Kind = "AUTH_EXPIRED"
	// KindConflict means the target no longer exists or was changed by
	// another session.
	KindConflict Kind = "CONFLICT_OR_NOT_FOUND"
	// KindBadRequest is any other rejection of the request itself.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindServer covers transport failures and 5xx responses.
	KindServer Kind = "SERVER_ERROR"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation builds the synchronous client-side rejection for an empty
// required field.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func IsValidation(err error) bool  { return kindOf(err) == KindValidation }
func IsAuthExpired(err error) bool { return kindOf(err) == KindAuthExpired }
func IsConflict(err error) bool    { return kindOf(err) == KindConflict }

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// classify maps a response status to the taxonomy. Transport-level failures
// never reach here; they are wrapped as KindServer at the call site.
func classify(status int, message string) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuthExpired
	case status == http.StatusNotFound || status == http.StatusConflict || status == http.StatusGone:
		kind = KindConflict
	case status >= 500:
		kind = KindServer
	default:
		kind = KindBadRequest
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Status: status, Message: message}
}
