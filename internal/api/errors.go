package api

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ErrValidation   ErrorKind = "validation"
	ErrUnauthorized ErrorKind = "unauthorized"
	ErrForbidden    ErrorKind = "forbidden"
	ErrNotFound     ErrorKind = "notFound"
	ErrNetwork      ErrorKind = "network"
	ErrServer       ErrorKind = "server"
)

// Error is the normalized failure shape every gateway call returns.
// Message carries the server-provided `msg` field when one was present.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
	}
	return string(e.Kind)
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusBadRequest:
		return ErrValidation
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrServer
	default:
		// Other 4xx responses are treated as validation-class failures.
		return ErrValidation
	}
}

func isKind(err error, kind ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// IsUnauthorized reports whether err is a 401-class gateway error. A true
// result signals a stale session; the consumer decides whether to force a
// logout.
func IsUnauthorized(err error) bool { return isKind(err, ErrUnauthorized) }

func IsForbidden(err error) bool { return isKind(err, ErrForbidden) }

func IsNotFound(err error) bool { return isKind(err, ErrNotFound) }
