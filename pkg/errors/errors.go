package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username or email already registered")

	ErrWarehouseNotFound = errors.New("warehouse not found")

	ErrInvalidInput = errors.New("invalid input data")
	ErrSamePassword = errors.New("new password must differ from the current one")

	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")

	ErrDeliveryFailed = errors.New("failed to deliver message")
)

// Error codes carried by AppError and echoed to clients.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps field-level messages so errors.Is(err, ErrInvalidInput) holds.
func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, ErrInvalidInput)
}

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrInvalidToken)
}
