package errors

import (
	"errors"
	"fmt"
)

// AppError is an application-specific error type
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Error code constants
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeInvalidArg  = "INVALID_ARGUMENT"
	CodeExternal    = "EXTERNAL_ERROR"
	CodeConflict    = "CONFLICT"         // Resource already exists (UNIQUE violation)
	CodeDependency  = "DEPENDENCY_ERROR" // Foreign key constraint violation
	CodeAuth        = "AUTH_ERROR"       // Invalid or missing credential, requires operator action
	CodeRateLimited = "RATE_LIMITED"     // External service rate limit, retryable
	CodeUnavailable = "UNAVAILABLE"      // External service timeout or 5xx, retryable
	CodeParse       = "PARSE_ERROR"      // Malformed structured response from external service
)

// Code extracts the AppError code from err, or CodeInternal if err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsAuth reports whether err is a fatal authentication/authorization error.
func IsAuth(err error) bool {
	return HasCode(err, CodeAuth)
}

// IsTransient reports whether err is worth retrying (rate limit, timeout, 5xx).
func IsTransient(err error) bool {
	return HasCode(err, CodeRateLimited) || HasCode(err, CodeUnavailable)
}
