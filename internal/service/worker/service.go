package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

type WorkerServiceImpl struct {
	worker.WorkerRepository
	oplog oplog.Logger
}

// Register implements worker.WorkerService.
func (s *WorkerServiceImpl) Register(ctx context.Context, req worker.CreateWorkerRequest) (worker.WorkerResponse, error) {
	if err := req.Validate(); err != nil {
		return worker.WorkerResponse{}, err
	}

	_, err := s.WorkerRepository.GetByPhone(ctx, req.Phone)
	if err == nil {
		return worker.WorkerResponse{}, worker.ErrPhoneExists
	}
	if !errors.Is(err, worker.ErrWorkerNotFound) {
		return worker.WorkerResponse{}, fmt.Errorf("failed to check phone: %w", err)
	}

	uid, err := uuid.NewV7()
	if err != nil {
		return worker.WorkerResponse{}, fmt.Errorf("failed to generate worker uid: %w", err)
	}

	created, err := s.WorkerRepository.Create(ctx, worker.Worker{
		UID:      uid.String(),
		Name:     req.Name,
		Phone:    req.Phone,
		IDNumber: req.IDNumber,
		Email:    req.Email,
	})
	if err != nil {
		if errors.Is(err, worker.ErrPhoneExists) || errors.Is(err, worker.ErrIDNumberExists) {
			return worker.WorkerResponse{}, err
		}
		return worker.WorkerResponse{}, fmt.Errorf("failed to create worker: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpWorkerRegister,
		ResourceType: "worker",
		ResourceID:   &created.ID,
		Description:  "registered worker " + created.Name,
		After:        map[string]string{"uid": created.UID, "phone": created.MaskedPhone()},
	})

	return mapWorkerToResponse(created, true), nil
}

// Get implements worker.WorkerService.
func (s *WorkerServiceImpl) Get(ctx context.Context, id string) (worker.WorkerResponse, error) {
	if !validator.IsValidUUID(id) {
		return worker.WorkerResponse{}, worker.ErrWorkerNotFound
	}

	w, err := s.WorkerRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return worker.WorkerResponse{}, err
		}
		return worker.WorkerResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}

	return mapWorkerToResponse(w, false), nil
}

// LookupByPhone implements worker.WorkerService.
func (s *WorkerServiceImpl) LookupByPhone(ctx context.Context, phone string) (worker.WorkerResponse, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidPhoneNumber(phone) {
		errs.Add("phone", "invalid phone number format")
		return worker.WorkerResponse{}, errs
	}

	w, err := s.WorkerRepository.GetByPhone(ctx, validator.NormalizePhone(phone))
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return worker.WorkerResponse{}, err
		}
		return worker.WorkerResponse{}, fmt.Errorf("failed to lookup worker: %w", err)
	}

	return mapWorkerToResponse(w, false), nil
}

// mapWorkerToResponse masks PII unless the caller just submitted it.
func mapWorkerToResponse(w worker.Worker, full bool) worker.WorkerResponse {
	resp := worker.WorkerResponse{
		ID:        w.ID,
		UID:       w.UID,
		Name:      w.Name,
		Phone:     w.MaskedPhone(),
		IDNumber:  w.MaskedIDNumber(),
		Email:     w.Email,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
	if full {
		resp.Phone = w.Phone
		resp.IDNumber = w.IDNumber
	}
	return resp
}

func NewWorkerService(workerRepo worker.WorkerRepository, logger oplog.Logger) worker.WorkerService {
	return &WorkerServiceImpl{
		WorkerRepository: workerRepo,
		oplog:            logger,
	}
}
