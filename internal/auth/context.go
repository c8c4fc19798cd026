package auth

import (
	"context"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
)

type principalKey struct{}

// WithPrincipal attaches p to ctx for the remainder of the request.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey{}).(*domain.Principal)
	return p
}
