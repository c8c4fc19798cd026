package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrConflict, ErrInternal,
		ErrNoCredential, ErrInvalidCredential, ErrPrincipalNotFound,
		ErrNotAuthorized, ErrAlreadyReviewed,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("db gone")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db gone", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "user not found"}
	assert.Equal(t, "NOT_FOUND: user not found", bare.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("order", "o-1"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"product not found", ProductNotFound("p-1"), "PRODUCT_NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"already exists", AlreadyExists("user", "email", "a@b.com"), "ALREADY_EXISTS", http.StatusConflict, ErrAlreadyExists},
		{"invalid input", InvalidInput("name is required"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("stale version"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"no credential", NoCredential(), "NO_CREDENTIAL", http.StatusUnauthorized, ErrNoCredential},
		{"invalid credential", InvalidCredential(errors.New("expired")), "INVALID_CREDENTIAL", http.StatusUnauthorized, ErrInvalidCredential},
		{"principal not found", PrincipalNotFound("u-1"), "PRINCIPAL_NOT_FOUND", http.StatusUnauthorized, ErrPrincipalNotFound},
		{"not authorized", NotAuthorized("admins only"), "NOT_AUTHORIZED", http.StatusUnauthorized, ErrNotAuthorized},
		{"already reviewed", AlreadyReviewed("p-1"), "ALREADY_REVIEWED", http.StatusBadRequest, ErrAlreadyReviewed},
		{"internal", Internal(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			if tt.sentinel != nil {
				assert.ErrorIs(t, tt.err, tt.sentinel)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", fmt.Errorf("wrap: %w", NotAuthorized("x")), http.StatusUnauthorized},
		{"bare not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"bare conflict", ErrConflict, http.StatusConflict},
		{"bare already reviewed", ErrAlreadyReviewed, http.StatusBadRequest},
		{"bare invalid credential", ErrInvalidCredential, http.StatusUnauthorized},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
