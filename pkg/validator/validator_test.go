package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

type reviewBody struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

type registerBody struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(reviewBody{Rating: 4, Comment: "solid"}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(reviewBody{Rating: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be greater than or equal to 1", fields["rating"])
	assert.Equal(t, "is required", fields["comment"])
}

func TestValidate_RatingUpperBound(t *testing.T) {
	err := Validate(reviewBody{Rating: 6, Comment: "too good"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be less than or equal to 5", valErr.Fields()["rating"])
}

func TestValidate_EmailAndMinLength(t *testing.T) {
	err := Validate(registerBody{Name: "Ash", Email: "nope", Password: "123"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
	assert.Contains(t, valErr.Error(), "validation failed")
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":5,"comment":"great"}`))
		var dst reviewBody
		require.NoError(t, DecodeAndValidate(req, &dst))
		assert.Equal(t, 5, dst.Rating)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":`))
		var dst reviewBody
		err := DecodeAndValidate(req, &dst)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("constraint failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":9,"comment":"x"}`))
		var dst reviewBody
		var valErr *ValidationError
		assert.ErrorAs(t, DecodeAndValidate(req, &dst), &valErr)
	})
}
