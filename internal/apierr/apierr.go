// Package apierr carries HTTP status and a stable code alongside an error.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/store"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Wrap(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, "bad_request", message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "forbidden", message)
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, "not_found", what+" not found")
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "conflict", message)
}

// Invalid is a validation failure with per-field messages.
func Invalid(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    "validation_failed",
		Message: "Validation failed",
		Fields:  fields,
	}
}

// FromStore maps store sentinels onto API errors. what names the record
// ("Project", "Blog") for the message; other errors pass through.
func FromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return Wrap(http.StatusNotFound, "not_found", what+" not found", err)
	case errors.Is(err, store.ErrDuplicate):
		return Wrap(http.StatusConflict, "conflict", what+" already exists", err)
	}
	return err
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
