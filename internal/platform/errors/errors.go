// Package errors provides structured errors that carry a category, a
// client-safe message and loggable context, and map onto HTTP statuses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates resource conflict (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates a failing upstream such as the classifier (HTTP 502)
	TypeExternal ErrorType = "external"
	// TypeUnavailable indicates a disabled or temporarily unavailable feature (HTTP 503)
	TypeUnavailable ErrorType = "unavailable"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error { return newError(TypeValidation, message, nil) }

func NotFoundError(message string) *Error { return newError(TypeNotFound, message, nil) }

func ConflictError(message string) *Error { return newError(TypeConflict, message, nil) }

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

func UnavailableError(message string) *Error { return newError(TypeUnavailable, message, nil) }

// WithField adds a context field to the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse. Causes are never exposed.
func (e *Error) ToResponse() ErrorResponse {
	resp := ErrorResponse{Error: e.Message, Type: e.Type}
	if len(e.Context) > 0 {
		resp.Context = e.Context
	}
	return resp
}

// AsStructuredError converts any error into a structured Error.
// If err already wraps an *Error, that error is returned unchanged.
// Otherwise it is wrapped as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	if structuredErr, ok := errors.AsType[*Error](err); ok {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
