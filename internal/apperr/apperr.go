// Package apperr defines the error taxonomy shared by services, middleware
// and handlers, and the echo error handler that renders every failure in
// the same JSON envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindBadRequest
	KindUnauthorized
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error type. Message is safe to show to clients;
// Cause is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int { return e.Kind.Status() }

// Messages shared by more than one layer.
const (
	MsgUnauthorized = "Unauthorized"
	MsgAdminsOnly   = "Access Denied. Admins only"
	MsgInternal     = "Internal Server Error"
	MsgValidation   = "Validation failed"
)

// Validation creates a validation error carrying per-field messages.
func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidation, Fields: fields}
}

// NotFound creates an error for a missing entity.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// BadRequest creates a business-rule error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Unauthorized creates an authentication or authorization error. An empty
// message yields the generic one.
func Unauthorized(message string) *Error {
	if message == "" {
		message = MsgUnauthorized
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Internal wraps an unexpected failure. The cause never reaches the client.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Cause: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
