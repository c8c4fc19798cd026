package auth

import (
	"github.com/martinmiralles/mar-pokemart/internal/domain"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// Policy names the authorization strategy applied to an operation.
type Policy string

const (
	// PolicyAdminOnly admits any principal with the admin flag.
	PolicyAdminOnly Policy = "admin_only"
	// PolicyOwnerOnly admits only the principal that owns the resource,
	// whatever its admin flag.
	PolicyOwnerOnly Policy = "owner_only"
)

// RequireAdmin passes iff p is present and is an admin. It does no I/O.
func RequireAdmin(p *domain.Principal) error {
	if p == nil || !p.IsAdmin {
		return apperrors.NotAuthorized("not authorized as an admin")
	}
	return nil
}
