package common

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindStorage Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConfig:
		return "config"
	default:
		return "storage"
	}
}

// StatusCode is the HTTP status a failure of this kind is reported with.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type every layer above the store returns.
// Message is safe to show to clients; Err is the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

func ValidationError(msg string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Errors: details}
}

func AuthenticationError(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func AuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func StorageError(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

func ConfigError(msg string, err error) *Error {
	return &Error{Kind: KindConfig, Message: msg, Err: err}
}

// KindOf reports the kind of err; anything outside the taxonomy is a storage failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
