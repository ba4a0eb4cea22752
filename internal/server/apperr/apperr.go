// Package apperr classifies failures into the kinds the API distinguishes
// and maps each kind to an HTTP status and a message that is safe to show
// to clients.
package apperr

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
)

// GenericMessage is returned for storage and unclassified failures so that
// no internal detail reaches the client.
const GenericMessage = "Cannot connect to database / System error"

// DuplicateMessage is returned for unique-key conflicts.
const DuplicateMessage = "Duplicate entry"

// Kind is the category of a failure.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindStorage
)

var kindNames = map[Kind]string{
	KindUnclassified: "unclassified",
	KindValidation:   "validation",
	KindRequest:      "request",
	KindUnauthorized: "unauthorized",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
	KindStorage:      "storage",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnclassified]
}

// HTTPCode returns the response status for the kind.
func (k Kind) HTTPCode() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind and a client-facing message through the call stack.
// The wrapped cause, if any, is kept for logging and errors.Is matching.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		if e.msg == "" {
			return e.err.Error()
		}
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap returns the underlying cause for errors.Is() and errors.As().
func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the text meant for the client.
func (e *Error) Message() string {
	return e.msg
}

func newError(kind Kind, msg string, cause error) error {
	return &Error{kind: kind, msg: msg, err: cause}
}

func Validation(msg string) error {
	return newError(KindValidation, msg, nil)
}

func Request(msg string) error {
	return newError(KindRequest, msg, nil)
}

func Unauthorized(msg string) error {
	return newError(KindUnauthorized, msg, nil)
}

func NotFound(msg string) error {
	return newError(KindNotFound, msg, nil)
}

func Conflict(msg string, cause error) error {
	return newError(KindConflict, msg, cause)
}

// Storage wraps a persistence failure. Its message is never shown to
// clients. If err is nil, Storage returns nil.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return newError(KindStorage, "", err)
}

// KindOf reports the kind of err, looking through wrapped errors and the
// repository sentinels.
func KindOf(err error) Kind {
	var appErr *Error
	switch {
	case err == nil:
		return KindUnclassified
	case errors.As(err, &appErr):
		return appErr.kind
	case errors.Is(err, common.ErrorNotFound):
		return KindNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return KindConflict
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return KindUnauthorized
	default:
		return KindUnclassified
	}
}

// Classify maps err to the HTTP status and the message to return. A nil
// error maps to 200 with an empty message.
func Classify(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	kind := KindOf(err)
	switch kind {
	case KindStorage, KindUnclassified:
		return kind.HTTPCode(), GenericMessage
	}

	var appErr *Error
	if errors.As(err, &appErr) && appErr.msg != "" {
		return kind.HTTPCode(), appErr.msg
	}

	switch kind {
	case KindNotFound:
		return kind.HTTPCode(), "Not found"
	case KindConflict:
		return kind.HTTPCode(), DuplicateMessage
	case KindUnauthorized:
		return kind.HTTPCode(), "Unauthorized"
	}
	return kind.HTTPCode(), http.StatusText(kind.HTTPCode())
}
