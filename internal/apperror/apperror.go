// Package apperror defines the error taxonomy shared by the service and API
// layers. Services return these; the API layer maps them to HTTP statuses.
package apperror

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// AppError pairs a sentinel error with the message returned to the client.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func MethodNotAllowed(message string) *AppError {
	return &AppError{Err: ErrMethodNotAllowed, Message: message}
}
