package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user does not own the referenced resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates the stored refresh token has passed its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrInvalidRange indicates a statistics date range where the end precedes the
// start, or the span exceeds the 2-year policy limit.
var ErrInvalidRange = errors.New("invalid date range")

// ErrCategoryInUse indicates a category deletion was blocked because
// transactions still reference it.
var ErrCategoryInUse = errors.New("category has transactions attached")

// ErrImmutableCategoryType indicates an attempt to change a category's type
// after creation.
var ErrImmutableCategoryType = errors.New("category type cannot be changed")

// AppError carries an HTTP-ish status code alongside a message and the wrapped
// cause. Repositories use it for infrastructure failures that have no sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
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
