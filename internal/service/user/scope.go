package user

import (
	"context"
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
)

type ScopeResolverImpl struct {
	base.BaseRepository
}

// Resolve maps the caller's role to the bases they may see:
// admin sees every base, a base manager the bases they own,
// staff the bases listed in their token, and workers none.
func (r *ScopeResolverImpl) Resolve(ctx context.Context) (user.Scope, error) {
	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return user.Scope{}, err
	}

	switch identity.Role {
	case user.RoleAdmin:
		return user.GlobalScope(), nil
	case user.RoleBaseManager:
		ids, err := r.BaseRepository.ListIDsByOwner(ctx, identity.UserID)
		if err != nil {
			return user.Scope{}, fmt.Errorf("failed to resolve owned bases: %w", err)
		}
		return user.Scope{BaseIDs: ids}, nil
	case user.RoleStaff:
		return user.Scope{BaseIDs: identity.BaseIDs}, nil
	default:
		return user.Scope{}, nil
	}
}

func NewScopeResolver(baseRepo base.BaseRepository) user.ScopeResolver {
	return &ScopeResolverImpl{BaseRepository: baseRepo}
}
