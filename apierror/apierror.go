// Package apierror defines the error taxonomy shared by the stores, the
// upload gateway and the HTTP layer.
package apierror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindConflict
	KindUnauthorized
	KindNotFound
	KindStorage
	KindConfig
)

// Codes refine a Kind where clients may want to tell failures apart.
const (
	CodeMissingFields   = "missing_fields"
	CodeInvalidBody     = "invalid_body"
	CodeInvalidStatus   = "invalid_status"
	CodeInvalidDeadline = "invalid_deadline"
	CodeUnsupportedType = "unsupported_type"
	CodeTooLarge        = "too_large"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []string
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

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(code, msg string) error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// MissingFields reports required fields that were absent or empty.
func MissingFields(fields ...string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeMissingFields,
		Message: "Missing required fields",
		Fields:  fields,
	}
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

func Config(msg string) error {
	return &Error{Kind: KindConfig, Message: msg}
}

// From extracts an *Error from err. Errors outside the taxonomy are reported
// as KindInternal wrapping the original error.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
