package base

import (
	"context"

	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
)

type BaseRepository interface {
	Create(ctx context.Context, base Base) (Base, error)

	// GetByID returns ErrBaseNotFound when missing
	GetByID(ctx context.Context, id string) (Base, error)

	// List returns the bases visible in scope, ordered by name
	List(ctx context.Context, scope user.Scope) ([]Base, error)

	// ListIDsByOwner resolves a base manager's bases
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type JobRepository interface {
	Create(ctx context.Context, job Job) (Job, error)

	// GetByID returns ErrJobNotFound when missing
	GetByID(ctx context.Context, id string) (Job, error)

	Update(ctx context.Context, job Job) (Job, error)
	ListByBase(ctx context.Context, baseID string) ([]Job, error)
}
