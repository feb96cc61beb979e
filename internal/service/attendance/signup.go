package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/notification"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

// SignUp implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SignUp(ctx context.Context, req attendance.SignUpRequest) (attendance.SignUpResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SignUpResponse{}, err
	}

	sponsorID, err := s.resolveWorkerID(ctx, req.WorkerID)
	if err != nil {
		return attendance.SignUpResponse{}, err
	}

	today := s.today()
	workDate := today
	if req.WorkDate != nil && *req.WorkDate != "" {
		workDate, err = s.calendar.ParseDate(*req.WorkDate)
		if err != nil {
			return attendance.SignUpResponse{}, fmt.Errorf("failed to parse work date: %w", err)
		}
		if workDate.Before(today) {
			return attendance.SignUpResponse{}, attendance.ErrWorkDateInPast
		}
	}

	if len(req.ProxyWorkerIDs) > attendance.MaxProxiesPerSponsor {
		return attendance.SignUpResponse{}, attendance.ErrTooManyProxies
	}
	if validator.HasDuplicates(req.ProxyWorkerIDs) || validator.IsInSlice(sponsorID, req.ProxyWorkerIDs) {
		return attendance.SignUpResponse{}, attendance.ErrInvalidProxy
	}

	job, err := s.JobRepository.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, base.ErrJobNotFound) {
			return attendance.SignUpResponse{}, err
		}
		return attendance.SignUpResponse{}, fmt.Errorf("failed to get job: %w", err)
	}
	if job.BaseID != req.BaseID {
		return attendance.SignUpResponse{}, base.ErrJobNotFound
	}
	if !job.IsActive {
		return attendance.SignUpResponse{}, base.ErrJobClosed
	}

	site, err := s.BaseRepository.GetByID(ctx, req.BaseID)
	if err != nil {
		if errors.Is(err, base.ErrBaseNotFound) {
			return attendance.SignUpResponse{}, err
		}
		return attendance.SignUpResponse{}, fmt.Errorf("failed to get base: %w", err)
	}

	sponsor, err := s.getWorker(ctx, sponsorID)
	if err != nil {
		return attendance.SignUpResponse{}, err
	}

	existing, err := s.SignupRepository.GetActiveByKey(ctx, sponsorID, req.BaseID, workDate)
	if err != nil {
		return attendance.SignUpResponse{}, fmt.Errorf("failed to check existing signup: %w", err)
	}
	if existing != nil {
		return attendance.SignUpResponse{}, attendance.ErrAlreadySignedUp
	}

	if err := s.checkProxyQuota(ctx, sponsorID, req.BaseID, workDate, req.ProxyWorkerIDs); err != nil {
		return attendance.SignUpResponse{}, err
	}

	record, err := s.SignupRepository.Create(ctx, attendance.SignupRecord{
		WorkerID: sponsorID,
		BaseID:   req.BaseID,
		JobID:    req.JobID,
		WorkDate: workDate,
		Status:   attendance.StatusSignedUp,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadySignedUp) {
			return attendance.SignUpResponse{}, err
		}
		return attendance.SignUpResponse{}, fmt.Errorf("failed to create signup: %w", err)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpSignup,
		ResourceType: "signup_record",
		ResourceID:   &record.ID,
		Description:  fmt.Sprintf("worker %s signed up at base %s for %s", sponsorID, req.BaseID, record.WorkDate.Format("2006-01-02")),
		After:        mapSignupToResponse(record),
	})
	s.notifySignup(ctx, sponsor, site.Name, workDate)

	results := make([]attendance.ProxyResult, 0, len(req.ProxyWorkerIDs))
	for _, proxyID := range req.ProxyWorkerIDs {
		results = append(results, s.signUpProxy(ctx, sponsorID, proxyID, job, site, workDate))
	}

	return attendance.SignUpResponse{
		Record:       mapSignupToResponse(record),
		ProxyResults: results,
	}, nil
}

// checkProxyQuota rejects the request when the sponsor's existing proxy records
// plus the ones this request would create exceed the per-day cap.
func (s *AttendanceServiceImpl) checkProxyQuota(ctx context.Context, sponsorID, baseID string, workDate time.Time, proxyIDs []string) error {
	if len(proxyIDs) == 0 {
		return nil
	}

	count, err := s.SignupRepository.CountProxiesBySponsor(ctx, sponsorID, baseID, workDate)
	if err != nil {
		return fmt.Errorf("failed to count proxies: %w", err)
	}

	needed := 0
	for _, proxyID := range proxyIDs {
		existing, err := s.SignupRepository.GetActiveByKey(ctx, proxyID, baseID, workDate)
		if err != nil {
			return fmt.Errorf("failed to check proxy signup: %w", err)
		}
		if existing == nil {
			needed++
		}
	}

	if count+needed > attendance.MaxProxiesPerSponsor {
		return attendance.ErrTooManyProxies
	}
	return nil
}

// signUpProxy creates one proxy record. Failures are reported, never returned.
func (s *AttendanceServiceImpl) signUpProxy(ctx context.Context, sponsorID, proxyID string, job base.Job, site base.Base, workDate time.Time) attendance.ProxyResult {
	result := attendance.ProxyResult{WorkerID: proxyID}

	proxy, err := s.getWorker(ctx, proxyID)
	if err != nil {
		slog.Warn("proxy signup failed", "sponsor_id", sponsorID, "proxy_id", proxyID, "error", err)
		result.Status = attendance.ProxyFailed
		result.Message = err.Error()
		return result
	}

	existing, err := s.SignupRepository.GetActiveByKey(ctx, proxyID, site.ID, workDate)
	if err != nil {
		slog.Warn("proxy signup failed", "sponsor_id", sponsorID, "proxy_id", proxyID, "error", err)
		result.Status = attendance.ProxyFailed
		result.Message = "failed to check existing signup"
		return result
	}
	if existing != nil {
		result.Status = attendance.ProxySkipped
		result.SignupID = &existing.ID
		result.Message = attendance.ErrAlreadySignedUp.Error()
		return result
	}

	record, err := s.SignupRepository.Create(ctx, attendance.SignupRecord{
		WorkerID:       proxyID,
		BaseID:         site.ID,
		JobID:          job.ID,
		WorkDate:       workDate,
		Status:         attendance.StatusSignedUp,
		IsProxy:        true,
		ProxySponsorID: &sponsorID,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadySignedUp) {
			result.Status = attendance.ProxySkipped
			result.Message = err.Error()
			return result
		}
		slog.Warn("proxy signup failed", "sponsor_id", sponsorID, "proxy_id", proxyID, "error", err)
		result.Status = attendance.ProxyFailed
		result.Message = "failed to create signup"
		return result
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpSignup,
		ResourceType: "signup_record",
		ResourceID:   &record.ID,
		Description:  fmt.Sprintf("worker %s signed up %s by proxy", sponsorID, proxyID),
		After:        mapSignupToResponse(record),
	})
	s.notifySignup(ctx, proxy, site.Name, workDate)

	result.Status = attendance.ProxyCreated
	result.SignupID = &record.ID
	return result
}

// notifySignup sends the confirmation with a fresh QR token, detached from the request.
func (s *AttendanceServiceImpl) notifySignup(ctx context.Context, w worker.Worker, baseName string, workDate time.Time) {
	if s.sender == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()

		content, err := s.codec.Encode(w.UID, s.now())
		if err != nil {
			slog.Warn("failed to issue token for signup confirmation", "worker_id", w.ID, "error", err)
			return
		}

		sent, err := s.sender.SendSignupConfirmation(ctx, notification.SignupConfirmation{
			Phone:     w.Phone,
			QRContent: content,
			BaseName:  baseName,
			WorkDate:  workDate,
		})
		if err != nil {
			slog.Warn("failed to send signup confirmation", "worker_id", w.ID, "error", err)
			return
		}
		if !sent {
			slog.Debug("signup confirmation skipped", "worker_id", w.ID)
		}
	})
}

// CancelSignup implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CancelSignup(ctx context.Context, id string) (attendance.SignupResponse, error) {
	if !validator.IsValidUUID(id) {
		return attendance.SignupResponse{}, attendance.ErrSignupNotFound
	}

	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.SignupResponse{}, err
	}

	record, err := s.SignupRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrSignupNotFound) {
			return attendance.SignupResponse{}, err
		}
		return attendance.SignupResponse{}, fmt.Errorf("failed to get signup: %w", err)
	}

	if !canCancel(identity, record) {
		return attendance.SignupResponse{}, user.ErrInsufficientPermissions
	}

	if record.Status != attendance.StatusSignedUp {
		return attendance.SignupResponse{}, attendance.ErrCannotCancel
	}

	before := mapSignupToResponse(record)
	record.Status = attendance.StatusCancelled

	updated, err := s.SignupRepository.UpdateStatus(ctx, record, attendance.StatusSignedUp)
	if err != nil {
		if errors.Is(err, attendance.ErrStatusChanged) {
			return attendance.SignupResponse{}, attendance.ErrCannotCancel
		}
		return attendance.SignupResponse{}, fmt.Errorf("failed to cancel signup: %w", err)
	}

	after := mapSignupToResponse(updated)
	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpSignupCancel,
		ResourceType: "signup_record",
		ResourceID:   &updated.ID,
		Description:  "signup cancelled",
		Before:       before,
		After:        after,
	})

	return after, nil
}

// canCancel lets admins cancel anything and workers cancel their own or their proxies' records.
func canCancel(identity user.Identity, record attendance.SignupRecord) bool {
	if identity.IsAdmin() {
		return true
	}
	if identity.Role != user.RoleWorker || identity.WorkerID == nil {
		return false
	}
	own := *identity.WorkerID
	return record.WorkerID == own || (record.ProxySponsorID != nil && *record.ProxySponsorID == own)
}
