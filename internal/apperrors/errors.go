// Package apperrors defines the errors handlers return to callers
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "BAD_REQUEST"
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	CodeTooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
	CodeConstraintViolation  ErrorCode = "CONSTRAINT_VIOLATION"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error with a code and a message that is safe to show to
// callers. Cause is logged but never serialized.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeConstraintViolation:
		return http.StatusUnprocessableEntity
	case CodeExternalServiceError, CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// WithCause attaches the underlying error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates an application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return New(CodeUnauthorized, message)
}

// ExternalService reports a failed upstream call without exposing its detail
func ExternalService(message string, cause error) *AppError {
	return New(CodeExternalServiceError, message).WithCause(cause)
}

func Internal(cause error) *AppError {
	return New(CodeInternal, "Internal Server Error").WithCause(cause)
}

// From converts any error into an AppError, wrapping unknown errors as internal
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
