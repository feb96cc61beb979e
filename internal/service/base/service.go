package base

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

type BaseServiceImpl struct {
	base.BaseRepository
	base.JobRepository
	scope user.ScopeResolver
}

// CreateBase implements base.BaseService.
func (s *BaseServiceImpl) CreateBase(ctx context.Context, req base.CreateBaseRequest) (base.BaseResponse, error) {
	if err := req.Validate(); err != nil {
		return base.BaseResponse{}, err
	}

	created, err := s.BaseRepository.Create(ctx, base.Base{
		Name:    req.Name,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		return base.BaseResponse{}, fmt.Errorf("failed to create base: %w", err)
	}

	return mapBaseToResponse(created), nil
}

// ListBases implements base.BaseService.
func (s *BaseServiceImpl) ListBases(ctx context.Context) ([]base.BaseResponse, error) {
	scope, err := s.scope.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]base.BaseResponse, 0)
	if scope.IsEmpty() {
		return responses, nil
	}

	bases, err := s.BaseRepository.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list bases: %w", err)
	}

	for _, b := range bases {
		responses = append(responses, mapBaseToResponse(b))
	}
	return responses, nil
}

// CreateJob implements base.BaseService.
func (s *BaseServiceImpl) CreateJob(ctx context.Context, req base.CreateJobRequest) (base.JobResponse, error) {
	if err := req.Validate(); err != nil {
		return base.JobResponse{}, err
	}

	if err := s.authorizeBase(ctx, req.BaseID); err != nil {
		return base.JobResponse{}, err
	}

	created, err := s.JobRepository.Create(ctx, base.Job{
		BaseID:    req.BaseID,
		Title:     req.Title,
		PayType:   base.PayType(req.PayType),
		UnitPrice: req.ParsedUnitPrice(),
		IsActive:  true,
	})
	if err != nil {
		return base.JobResponse{}, fmt.Errorf("failed to create job: %w", err)
	}

	return mapJobToResponse(created), nil
}

// UpdateJob implements base.BaseService.
func (s *BaseServiceImpl) UpdateJob(ctx context.Context, req base.UpdateJobRequest) (base.JobResponse, error) {
	if err := req.Validate(); err != nil {
		return base.JobResponse{}, err
	}

	job, err := s.JobRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, base.ErrJobNotFound) {
			return base.JobResponse{}, err
		}
		return base.JobResponse{}, fmt.Errorf("failed to get job: %w", err)
	}

	if err := s.authorizeBase(ctx, job.BaseID); err != nil {
		return base.JobResponse{}, err
	}

	req.Apply(&job)

	updated, err := s.JobRepository.Update(ctx, job)
	if err != nil {
		return base.JobResponse{}, fmt.Errorf("failed to update job: %w", err)
	}

	return mapJobToResponse(updated), nil
}

// ListJobs implements base.BaseService. Job postings are visible to every role.
func (s *BaseServiceImpl) ListJobs(ctx context.Context, baseID string) ([]base.JobResponse, error) {
	if !validator.IsValidUUID(baseID) {
		return nil, base.ErrBaseNotFound
	}

	if _, err := s.BaseRepository.GetByID(ctx, baseID); err != nil {
		if errors.Is(err, base.ErrBaseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get base: %w", err)
	}

	jobs, err := s.JobRepository.ListByBase(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	responses := make([]base.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		responses = append(responses, mapJobToResponse(j))
	}
	return responses, nil
}

// authorizeBase checks the base exists and lies in the caller's scope.
func (s *BaseServiceImpl) authorizeBase(ctx context.Context, baseID string) error {
	if _, err := s.BaseRepository.GetByID(ctx, baseID); err != nil {
		if errors.Is(err, base.ErrBaseNotFound) {
			return err
		}
		return fmt.Errorf("failed to get base: %w", err)
	}

	scope, err := s.scope.Resolve(ctx)
	if err != nil {
		return err
	}
	if !scope.Allows(baseID) {
		return user.ErrBaseAccessDenied
	}
	return nil
}

func mapBaseToResponse(b base.Base) base.BaseResponse {
	return base.BaseResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

func mapJobToResponse(j base.Job) base.JobResponse {
	return base.JobResponse{
		ID:        j.ID,
		BaseID:    j.BaseID,
		Title:     j.Title,
		PayType:   string(j.PayType),
		UnitPrice: j.UnitPrice.StringFixed(2),
		IsActive:  j.IsActive,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

func NewBaseService(baseRepo base.BaseRepository, jobRepo base.JobRepository, scope user.ScopeResolver) base.BaseService {
	return &BaseServiceImpl{
		BaseRepository: baseRepo,
		JobRepository:  jobRepo,
		scope:          scope,
	}
}
