package auth

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/martinmiralles/mar-pokemart/internal/domain"
	apperrors "github.com/martinmiralles/mar-pokemart/pkg/errors"
)

// Owned is implemented by resources that belong to a single principal.
type Owned interface {
	OwnerID() string
}

// OwnershipChecker enforces PolicyOwnerOnly.
type OwnershipChecker struct {
	loader *IdentityLoader
}

// NewOwnershipChecker creates a checker that re-loads callers through loader.
func NewOwnershipChecker(loader *IdentityLoader) *OwnershipChecker {
	return &OwnershipChecker{loader: loader}
}

// Check passes when resource exists, the caller still exists, and the caller
// owns the resource. The admin flag plays no part.
func (c *OwnershipChecker) Check(ctx context.Context, resource Owned, caller *domain.Principal) error {
	if isNil(resource) {
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: "resource not found",
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	}
	if caller == nil {
		return apperrors.NotAuthorized("not authorized, no principal")
	}

	// The context copy may be stale if the account was removed mid-request.
	current, err := c.loader.Load(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPrincipalNotFound) {
			return apperrors.NotFound("user", caller.ID)
		}
		return err
	}

	if resource.OwnerID() != current.ID {
		return apperrors.NotAuthorized("not authorized to modify this resource")
	}
	return nil
}

func isNil(v Owned) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
