// Package domain provides the pipeline resource shapes and the canonical error
// types returned by the client.
package domain

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a client error.
type ErrorType string

const (
	// ErrorTypeInvalidArgument indicates an address component was missing or
	// malformed. No request was sent.
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"

	// ErrorTypeStatus indicates the backend answered with a non-success status.
	ErrorTypeStatus ErrorType = "status"
)

// ErrInvalidArgument is the sentinel matched by errors.Is for every
// invalid-argument APIError.
var ErrInvalidArgument = errors.New("invalid argument")

// APIError represents a canonical client error.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Param is the argument that caused the error (if applicable)
	Param string `json:"param,omitempty"`

	// StatusCode is the backend status for ErrorTypeStatus errors
	StatusCode int `json:"-"`

	// Body is the raw backend response body, unmodified
	Body []byte `json:"-"`

	// Method and Path identify the request that failed
	Method string `json:"-"`
	Path   string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.Type {
	case ErrorTypeStatus:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, string(e.Body))
	case ErrorTypeInvalidArgument:
		if e.Param != "" {
			return fmt.Sprintf("%s (%s): %s", e.Type, e.Param, e.Message)
		}
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is reports whether target is ErrInvalidArgument and e is an invalid-argument error.
func (e *APIError) Is(target error) bool {
	return target == ErrInvalidArgument && e.Type == ErrorTypeInvalidArgument
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithParam adds an argument name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// WithStatusCode sets the backend status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithBody attaches the raw response body.
func (e *APIError) WithBody(body []byte) *APIError {
	e.Body = body
	return e
}

// WithRequest records which request produced the error.
func (e *APIError) WithRequest(method, path string) *APIError {
	e.Method = method
	e.Path = path
	return e
}

// ErrInvalidArgumentf creates an invalid-argument error for param.
func ErrInvalidArgumentf(param, format string, args ...any) *APIError {
	return NewAPIError(ErrorTypeInvalidArgument, fmt.Sprintf(format, args...)).WithParam(param)
}

// ErrStatus creates an error for a non-success backend response.
func ErrStatus(code int, body []byte) *APIError {
	return NewAPIError(ErrorTypeStatus, "unexpected status").
		WithStatusCode(code).
		WithBody(body)
}

// IsStatus reports whether err is a backend status error with the given code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeStatus && apiErr.StatusCode == code
	}
	return false
}
