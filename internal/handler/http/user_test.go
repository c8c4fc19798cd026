package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	s.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Once()
	s.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "red@pallet.town"))

	body := map[string]any{"name": "Red", "email": "red@pallet.town", "password": "charizard1"}

	rec := s.do(t, http.MethodPost, "/api/users/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var token domain.AuthToken
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &token))
	assert.Equal(t, "Red", token.User.Name)
	assert.False(t, token.User.IsAdmin)
	assert.NotEmpty(t, token.AccessToken)

	rec = s.do(t, http.MethodPost, "/api/users/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users/register", "", map[string]any{"name": "Red", "email": "nope", "password": "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "email")
	assert.Contains(t, env.Error.Fields, "password")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("pikachu123"), bcrypt.MinCost)
	require.NoError(t, err)
	s.users.On("GetByEmail", mock.Anything, "red@pallet.town").
		Return(&domain.User{ID: buyerID, Name: "Red", Email: "red@pallet.town", PasswordHash: string(hash)}, nil)

	rec := s.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"email": "red@pallet.town", "password": "pikachu123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var token domain.AuthToken
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &token))

	claims, err := s.jwt.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, buyerID, claims.UserID)

	rec = s.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"email": "red@pallet.town", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	s.users.On("Delete", mock.Anything, buyerID).Return(nil)

	rec := s.do(t, http.MethodDelete, "/api/users/"+buyerID, s.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+adminID, s.token(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
