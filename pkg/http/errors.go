package http

import (
	"fmt"
	"net/http"
)

// Error codes shared by every handler.
const (
	CodeInvalidInput       = "ERR_INVALID_INPUT"
	CodeDivisionByZero     = "ERR_DIVISION_BY_ZERO"
	CodeModelNotReady      = "ERR_MODEL_NOT_READY"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeTooManyRequests    = "ERR_TOO_MANY_REQUESTS"
	CodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	CodeInternal           = "ERR_INTERNAL"
)

// AppError represents application-level error with HTTP status. Message is
// safe to show to clients; Err carries the internal cause for logs.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// InvalidInputError creates a 400 error for rejected request data.
func InvalidInputError(field, message string) *AppError {
	return NewAppError(CodeInvalidInput, field, message, http.StatusBadRequest)
}

// BadRequestErrorf creates a 400 error with formatting.
func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return InvalidInputError("", fmt.Sprintf(format, a...))
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, "", message, http.StatusNotFound)
}

// TooManyRequestsError creates a 429 error.
func TooManyRequestsError(message string) *AppError {
	return NewAppError(CodeTooManyRequests, "", message, http.StatusTooManyRequests)
}

// ServiceUnavailableError creates a 503 error.
func ServiceUnavailableError(code, message string) *AppError {
	return NewAppError(code, "", message, http.StatusServiceUnavailable)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
