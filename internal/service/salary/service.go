package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

type SalaryServiceImpl struct {
	salary.SalaryRepository
	attendance.SignupRepository
	base.JobRepository
	oplog oplog.Logger
}

// CalculateAndDraft implements salary.SalaryService.
// Drafting again for the same record replaces the PENDING draft.
func (s *SalaryServiceImpl) CalculateAndDraft(ctx context.Context, req salary.DraftSalaryRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	record, err := s.SignupRepository.GetByID(ctx, req.SignupID)
	if err != nil {
		if errors.Is(err, attendance.ErrSignupNotFound) {
			return salary.SalaryResponse{}, err
		}
		return salary.SalaryResponse{}, fmt.Errorf("failed to get signup record: %w", err)
	}
	if !record.IsCheckedIn() {
		return salary.SalaryResponse{}, salary.ErrSignupNotCheckedIn
	}

	existing, err := s.SalaryRepository.GetBySignupID(ctx, record.ID)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to get existing draft: %w", err)
	}
	if existing != nil && existing.IsLocked() {
		return salary.SalaryResponse{}, salary.ErrSalaryLocked
	}

	job, err := s.JobRepository.GetByID(ctx, record.JobID)
	if err != nil {
		if errors.Is(err, base.ErrJobNotFound) {
			return salary.SalaryResponse{}, err
		}
		return salary.SalaryResponse{}, fmt.Errorf("failed to get job: %w", err)
	}

	duration, count := req.Duration(), req.Count()
	amount, err := salary.Calculate(job.PayType, job.UnitPrice, duration, count)
	if err != nil {
		slog.Error("salary calculation failed", "job_id", job.ID, "pay_type", job.PayType, "error", err)
		return salary.SalaryResponse{}, err
	}
	if err := salary.CheckTotal(amount); err != nil {
		return salary.SalaryResponse{}, err
	}

	draft, err := s.SalaryRepository.Upsert(ctx, salary.SalaryDraft{
		SignupID:          record.ID,
		WorkDuration:      duration,
		PieceCount:        count,
		UnitPriceSnapshot: job.UnitPrice,
		PayType:           job.PayType,
		TotalAmount:       amount,
		Status:            salary.SalaryStatusPending,
		PayoutType:        req.Payout(),
		AdminID:           identity.UserID,
	})
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to save salary draft: %w", err)
	}

	entry := oplog.Entry{
		Operation:    oplog.OpSalaryDraft,
		ResourceType: "salary_draft",
		ResourceID:   &draft.ID,
		Description:  fmt.Sprintf("salary drafted for signup %s: %s", record.ID, draft.TotalAmount.StringFixed(2)),
		After:        mapDraftToResponse(draft),
	}
	if existing != nil {
		entry.Before = mapDraftToResponse(*existing)
	}
	s.oplog.Log(ctx, entry)

	return mapDraftToResponse(draft), nil
}

// GetSalary implements salary.SalaryService.
func (s *SalaryServiceImpl) GetSalary(ctx context.Context, id string) (salary.SalaryResponse, error) {
	draft, err := s.getDraft(ctx, id)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	return mapDraftToResponse(draft), nil
}

// ConfirmSalary implements salary.SalaryService.
func (s *SalaryServiceImpl) ConfirmSalary(ctx context.Context, id string) (salary.SalaryResponse, error) {
	draft, err := s.getDraft(ctx, id)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	if draft.Status != salary.SalaryStatusPending {
		return salary.SalaryResponse{}, salary.ErrSalaryNotPending
	}

	updated, err := s.SalaryRepository.UpdateStatus(ctx, draft.ID, salary.SalaryStatusConfirmed)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to confirm salary: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpSalaryConfirm,
		ResourceType: "salary_draft",
		ResourceID:   &updated.ID,
		Description:  "salary draft confirmed",
		Before:       mapDraftToResponse(draft),
		After:        mapDraftToResponse(updated),
	})

	return mapDraftToResponse(updated), nil
}

func (s *SalaryServiceImpl) getDraft(ctx context.Context, id string) (salary.SalaryDraft, error) {
	if !validator.IsValidUUID(id) {
		return salary.SalaryDraft{}, salary.ErrSalaryNotFound
	}

	draft, err := s.SalaryRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, salary.ErrSalaryNotFound) {
			return salary.SalaryDraft{}, err
		}
		return salary.SalaryDraft{}, fmt.Errorf("failed to get salary draft: %w", err)
	}
	return draft, nil
}

func mapDraftToResponse(d salary.SalaryDraft) salary.SalaryResponse {
	return salary.SalaryResponse{
		ID:                d.ID,
		SignupID:          d.SignupID,
		WorkDuration:      d.WorkDuration.String(),
		PieceCount:        d.PieceCount,
		UnitPriceSnapshot: d.UnitPriceSnapshot.StringFixed(2),
		PayType:           string(d.PayType),
		TotalAmount:       d.TotalAmount.StringFixed(2),
		Status:            string(d.Status),
		PayoutType:        string(d.PayoutType),
		AdminID:           d.AdminID,
		CreatedAt:         d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.Format(time.RFC3339),
	}
}

func NewSalaryService(
	salaryRepo salary.SalaryRepository,
	signupRepo attendance.SignupRepository,
	jobRepo base.JobRepository,
	logger oplog.Logger,
) salary.SalaryService {
	return &SalaryServiceImpl{
		SalaryRepository: salaryRepo,
		SignupRepository: signupRepo,
		JobRepository:    jobRepo,
		oplog:            logger,
	}
}
