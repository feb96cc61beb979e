package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type baseRepositoryImpl struct {
	db *database.DB
}

func NewBaseRepository(db *database.DB) base.BaseRepository {
	return &baseRepositoryImpl{db: db}
}

// Create implements base.BaseRepository.
func (r *baseRepositoryImpl) Create(ctx context.Context, b base.Base) (base.Base, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO bases (name, address, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	if err := q.QueryRow(ctx, query, b.Name, b.Address, b.OwnerID).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return base.Base{}, fmt.Errorf("failed to insert base: %w", err)
	}
	return b, nil
}

// GetByID implements base.BaseRepository.
func (r *baseRepositoryImpl) GetByID(ctx context.Context, id string) (base.Base, error) {
	q := GetQuerier(ctx, r.db)

	var b base.Base
	err := q.QueryRow(ctx, `
		SELECT id, name, address, owner_id, created_at, updated_at
		FROM bases WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Address, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return base.Base{}, base.ErrBaseNotFound
		}
		return base.Base{}, fmt.Errorf("failed to get base: %w", err)
	}
	return b, nil
}

// List implements base.BaseRepository.
func (r *baseRepositoryImpl) List(ctx context.Context, scope user.Scope) ([]base.Base, error) {
	q := GetQuerier(ctx, r.db)

	var where whereBuilder
	where.scope("id", scope)

	rows, err := q.Query(ctx, `
		SELECT id, name, address, owner_id, created_at, updated_at
		FROM bases
		WHERE `+where.String()+`
		ORDER BY name
	`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bases: %w", err)
	}
	defer rows.Close()

	bases := make([]base.Base, 0)
	for rows.Next() {
		var b base.Base
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan base: %w", err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

// ListIDsByOwner implements base.BaseRepository.
func (r *baseRepositoryImpl) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM bases WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned bases: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect owned bases: %w", err)
	}
	return ids, nil
}

type jobRepositoryImpl struct {
	db *database.DB
}

func NewJobRepository(db *database.DB) base.JobRepository {
	return &jobRepositoryImpl{db: db}
}

const jobColumns = `id, base_id, title, pay_type, unit_price, is_active, created_at, updated_at`

func scanJob(row pgx.Row) (base.Job, error) {
	var j base.Job
	err := row.Scan(&j.ID, &j.BaseID, &j.Title, &j.PayType, &j.UnitPrice, &j.IsActive, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// Create implements base.JobRepository.
func (r *jobRepositoryImpl) Create(ctx context.Context, j base.Job) (base.Job, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanJob(q.QueryRow(ctx, `
		INSERT INTO jobs (base_id, title, pay_type, unit_price, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+jobColumns,
		j.BaseID, j.Title, j.PayType, j.UnitPrice, j.IsActive,
	))
	if err != nil {
		return base.Job{}, fmt.Errorf("failed to insert job: %w", err)
	}
	return created, nil
}

// GetByID implements base.JobRepository.
func (r *jobRepositoryImpl) GetByID(ctx context.Context, id string) (base.Job, error) {
	q := GetQuerier(ctx, r.db)

	j, err := scanJob(q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return base.Job{}, base.ErrJobNotFound
		}
		return base.Job{}, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// Update implements base.JobRepository.
func (r *jobRepositoryImpl) Update(ctx context.Context, j base.Job) (base.Job, error) {
	q := GetQuerier(ctx, r.db)

	updated, err := scanJob(q.QueryRow(ctx, `
		UPDATE jobs
		SET title = $1, pay_type = $2, unit_price = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+jobColumns,
		j.Title, j.PayType, j.UnitPrice, j.IsActive, j.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return base.Job{}, base.ErrJobNotFound
		}
		return base.Job{}, fmt.Errorf("failed to update job: %w", err)
	}
	return updated, nil
}

// ListByBase implements base.JobRepository.
func (r *jobRepositoryImpl) ListByBase(ctx context.Context, baseID string) ([]base.Job, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE base_id = $1 ORDER BY title`, baseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]base.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
