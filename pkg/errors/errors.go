package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Every AppError wraps exactly one of these so callers can
// classify failures with errors.Is regardless of the message.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
	ErrNoCredential      = errors.New("no credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrAlreadyReviewed   = errors.New("already reviewed")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ProductNotFound is NotFound specialised for the product aggregate.
func ProductNotFound(id string) *AppError {
	e := NotFound("product", id)
	e.Code = "PRODUCT_NOT_FOUND"
	return e
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error for malformed or missing request fields.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Conflict creates a 409 error for a lost optimistic-concurrency race.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// NoCredential creates a 401 error for a request without a bearer credential.
func NoCredential() *AppError {
	return &AppError{
		Code:    "NO_CREDENTIAL",
		Message: "not authorized, no token",
		Status:  http.StatusUnauthorized,
		Err:     ErrNoCredential,
	}
}

// InvalidCredential creates a 401 error for a malformed, expired, or forged token.
func InvalidCredential(cause error) *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIAL",
		Message: "not authorized, token failed",
		Status:  http.StatusUnauthorized,
		Err:     fmt.Errorf("%w: %v", ErrInvalidCredential, cause),
	}
}

// PrincipalNotFound creates a 401 error for a verified token whose principal
// no longer exists.
func PrincipalNotFound(id string) *AppError {
	return &AppError{
		Code:    "PRINCIPAL_NOT_FOUND",
		Message: fmt.Sprintf("principal %s not found", id),
		Status:  http.StatusUnauthorized,
		Err:     ErrPrincipalNotFound,
	}
}

// NotAuthorized creates a 401 error for a caller lacking the required role or ownership.
func NotAuthorized(message string) *AppError {
	return &AppError{
		Code:    "NOT_AUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrNotAuthorized,
	}
}

// AlreadyReviewed creates a 400 error for a second review by the same principal.
func AlreadyReviewed(productID string) *AppError {
	return &AppError{
		Code:    "ALREADY_REVIEWED",
		Message: fmt.Sprintf("product %s already reviewed", productID),
		Status:  http.StatusBadRequest,
		Err:     ErrAlreadyReviewed,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyReviewed):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoCredential), errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrPrincipalNotFound), errors.Is(err, ErrNotAuthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
