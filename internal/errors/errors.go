package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeStateConflict   = "STATE_CONFLICT"
	ErrCodeStorageFailure  = "STORAGE_FAILURE"
	ErrCodeDeliveryFailure = "DELIVERY_FAILURE"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "STATE_CONFLICT")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR wrapping cause, which may be nil.
func NewValidationError(field string, reason string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
		Err:     cause,
	}
}

// NewStateConflictError reports an event that is not valid in the current state.
func NewStateConflictError(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeStateConflict,
		Message: message,
		Status:  409,
		Err:     cause,
	}
}

// NewStorageError reports a failed read or write against the store.
func NewStorageError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStorageFailure,
		Message: fmt.Sprintf("storage operation failed: %s", op),
		Status:  503,
		Err:     err,
	}
}

// NewDeliveryError reports a failed outbound message or reaction.
func NewDeliveryError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDeliveryFailure,
		Message: fmt.Sprintf("delivery failed: %s", op),
		Status:  502,
		Err:     err,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// Standard library passthroughs so callers importing this package need not
// alias the stdlib one.

func New(text string) error         { return stderrors.New(text) }
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Join(errs ...error) error      { return stderrors.Join(errs...) }
