package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/notification"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/qrtoken"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/utils"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

// notifyTimeout bounds one detached confirmation send.
const notifyTimeout = 10 * time.Second

type AttendanceServiceImpl struct {
	attendance.SignupRepository
	worker.WorkerRepository
	base.BaseRepository
	base.JobRepository

	codec    *qrtoken.Codec
	calendar *utils.BusinessCalendar
	sender   notification.Sender
	oplog    oplog.Logger
	scope    user.ScopeResolver

	now      func() time.Time
	dispatch func(fn func())
}

func NewAttendanceService(
	signupRepo attendance.SignupRepository,
	workerRepo worker.WorkerRepository,
	baseRepo base.BaseRepository,
	jobRepo base.JobRepository,
	codec *qrtoken.Codec,
	calendar *utils.BusinessCalendar,
	sender notification.Sender,
	logger oplog.Logger,
	scope user.ScopeResolver,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		SignupRepository: signupRepo,
		WorkerRepository: workerRepo,
		BaseRepository:   baseRepo,
		JobRepository:    jobRepo,
		codec:            codec,
		calendar:         calendar,
		sender:           sender,
		oplog:            logger,
		scope:            scope,
		now:              time.Now,
		dispatch:         func(fn func()) { go fn() },
	}
}

// today is the business-local calendar date of now.
func (s *AttendanceServiceImpl) today() time.Time {
	return s.calendar.DateOf(s.now())
}

// resolveWorkerID returns the worker an operation acts for.
// Workers always act for themselves; admins name the worker explicitly.
func (s *AttendanceServiceImpl) resolveWorkerID(ctx context.Context, requested string) (string, error) {
	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}

	switch identity.Role {
	case user.RoleWorker:
		if identity.WorkerID == nil || *identity.WorkerID == "" {
			return "", user.ErrWorkerIdentityRequired
		}
		return *identity.WorkerID, nil
	case user.RoleAdmin:
		if requested == "" {
			var errs validator.ValidationErrors
			errs.Add("worker_id", "worker_id is required")
			return "", errs
		}
		if !validator.IsValidUUID(requested) {
			return "", worker.ErrWorkerNotFound
		}
		return requested, nil
	default:
		return "", user.ErrInsufficientPermissions
	}
}

func (s *AttendanceServiceImpl) getWorker(ctx context.Context, id string) (worker.Worker, error) {
	w, err := s.WorkerRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return worker.Worker{}, err
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

func mapSignupToResponse(r attendance.SignupRecord) attendance.SignupResponse {
	return attendance.SignupResponse{
		ID:             r.ID,
		WorkerID:       r.WorkerID,
		WorkerName:     r.WorkerName,
		BaseID:         r.BaseID,
		BaseName:       r.BaseName,
		JobID:          r.JobID,
		JobTitle:       r.JobTitle,
		WorkDate:       utils.FormatDate(r.WorkDate),
		Status:         string(r.Status),
		CheckinTime:    utils.TimePtrToString(r.CheckinTime),
		IsProxy:        r.IsProxy,
		ProxySponsorID: r.ProxySponsorID,
		IsOfflineSync:  r.IsOfflineSync,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
}
