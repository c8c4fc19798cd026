package auth

import (
	"strings"

	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// BearerPrefix is the required scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "

// ParseBearer extracts the token from an Authorization header value. A
// missing header or a value without the bearer prefix yields NoCredential.
func ParseBearer(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return "", apperrors.NoCredential()
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix)), nil
}

// Verifier resolves an Authorization header to a principal id.
type Verifier struct {
	jwt *JWTManager
}

// NewVerifier creates a verifier backed by the given token manager.
func NewVerifier(jwt *JWTManager) *Verifier {
	return &Verifier{jwt: jwt}
}

// Verify returns the principal id encoded in header. It never touches the
// store and is a pure function of the header, the secret and the clock.
func (v *Verifier) Verify(header string) (string, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return "", err
	}

	claims, err := v.jwt.Validate(token)
	if err != nil {
		return "", apperrors.InvalidCredential(err)
	}

	return claims.UserID, nil
}
