package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// PrincipalStore looks up principals by id. Implementations must not read
// the credential hash.
type PrincipalStore interface {
	GetPrincipal(ctx context.Context, id string) (*domain.Principal, error)
}

// IdentityLoader fetches the principal behind a verified credential.
type IdentityLoader struct {
	store PrincipalStore
}

// NewIdentityLoader creates a loader over store.
func NewIdentityLoader(store PrincipalStore) *IdentityLoader {
	return &IdentityLoader{store: store}
}

// Load returns the principal with the given id, or PrincipalNotFound.
func (l *IdentityLoader) Load(ctx context.Context, principalID string) (*domain.Principal, error) {
	p, err := l.store.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.PrincipalNotFound(principalID)
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return p, nil
}
