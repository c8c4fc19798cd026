package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
	"github.com/martinmiralles/mar-pokemart/pkg/logger"
	"github.com/martinmiralles/mar-pokemart/pkg/validator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteData_WrapsPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"message": "review added"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"message":"review added"}}`, rec.Body.String())
}

func TestWriteError_AppErrorKeepsCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"product not found", apperrors.ProductNotFound("p-1"), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"already reviewed", apperrors.AlreadyReviewed("p-1"), http.StatusBadRequest, "ALREADY_REVIEWED"},
		{"no credential", apperrors.NoCredential(), http.StatusUnauthorized, "NO_CREDENTIAL"},
		{"not authorized", apperrors.NotAuthorized("admins only"), http.StatusUnauthorized, "NOT_AUTHORIZED"},
		{"wrapped", fmt.Errorf("add review: %w", apperrors.Conflict("stale")), http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)

			WriteError(rec, req, tt.err, discardLogger())

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestWriteError_SentinelsAreClassified(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("insert: %w", apperrors.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
		{fmt.Errorf("insert: %w", apperrors.ErrAlreadyReviewed), http.StatusBadRequest, "ALREADY_REVIEWED"},
		{fmt.Errorf("verify: %w", apperrors.ErrInvalidCredential), http.StatusUnauthorized, "INVALID_CREDENTIAL"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(rec, req, tt.err, discardLogger())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec).Error.Code)
		})
	}
}

func TestWriteError_InternalIsNotEchoed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, apperrors.Internal(errors.New("password=hunter2")), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Equal(t, "an internal error occurred", decode(t, rec).Error.Message)
}

func TestWriteError_ValidationErrorHasFields(t *testing.T) {
	type body struct {
		Rating int `json:"rating" validate:"gte=1,lte=5"`
	}
	verr := validator.Validate(body{Rating: 9})
	require.Error(t, verr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	WriteError(rec, req, verr, discardLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "rating")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	WriteError(rec, req, apperrors.NotFound("order", "o-1"), discardLogger())

	assert.Equal(t, "corr-42", decode(t, rec).Error.RequestID)
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		perPage    int
		wantPages  int
		wantHasNxt bool
	}{
		{"partial last page", 25, 1, 10, 3, true},
		{"exact division", 20, 2, 10, 2, false},
		{"empty", 0, 1, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginatedResponse([]string(nil), tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantHasNxt, p.HasNext)
			assert.NotNil(t, p.Items)
		})
	}
}

func TestParseUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseUUID(rec, "6f1c1d8e-2b8a-4a53-9b7e-0b3f1f4e2a10")
	assert.True(t, ok)
	assert.Equal(t, "6f1c1d8e-2b8a-4a53-9b7e-0b3f1f4e2a10", id.String())

	rec = httptest.NewRecorder()
	_, ok = ParseUUID(rec, "not-a-uuid")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode(t, rec).Error.Code)
}
