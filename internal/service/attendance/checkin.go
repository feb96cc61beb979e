package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
)

// CheckIn implements attendance.AttendanceService.
// A second scan of an already checked-in worker returns the record unchanged
// and reports false.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.SignupResponse, bool, error) {
	if err := req.Validate(); err != nil {
		return attendance.SignupResponse{}, false, err
	}

	scope, err := s.scope.Resolve(ctx)
	if err != nil {
		return attendance.SignupResponse{}, false, err
	}
	if !scope.Allows(req.BaseID) {
		return attendance.SignupResponse{}, false, user.ErrBaseAccessDenied
	}

	payload, err := s.codec.Decode(req.QRContent)
	if err != nil {
		s.logCheckinFailure(ctx, req.BaseID, nil, err)
		return attendance.SignupResponse{}, false, err
	}

	w, err := s.WorkerRepository.GetByUID(ctx, payload.Identifier)
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			s.logCheckinFailure(ctx, req.BaseID, nil, err)
			return attendance.SignupResponse{}, false, err
		}
		return attendance.SignupResponse{}, false, fmt.Errorf("failed to get worker by uid: %w", err)
	}

	record, err := s.SignupRepository.GetActiveByKey(ctx, w.ID, req.BaseID, s.today())
	if err != nil {
		return attendance.SignupResponse{}, false, fmt.Errorf("failed to get signup: %w", err)
	}
	if record == nil || record.Status == attendance.StatusAbsent {
		s.logCheckinFailure(ctx, req.BaseID, &w.ID, attendance.ErrNotSignedUpToday)
		return attendance.SignupResponse{}, false, attendance.ErrNotSignedUpToday
	}

	if record.IsCheckedIn() {
		return mapSignupToResponse(*record), false, nil
	}

	before := mapSignupToResponse(*record)
	expected := record.Status
	record.MarkCheckedIn(s.now(), false)

	updated, err := s.SignupRepository.UpdateStatus(ctx, *record, expected)
	if errors.Is(err, attendance.ErrStatusChanged) {
		// another scanner or a cancel got there first
		current, getErr := s.SignupRepository.GetByID(ctx, record.ID)
		if getErr != nil {
			return attendance.SignupResponse{}, false, fmt.Errorf("failed to reload signup: %w", getErr)
		}
		if current.IsCheckedIn() {
			return mapSignupToResponse(current), false, nil
		}
		s.logCheckinFailure(ctx, req.BaseID, &w.ID, attendance.ErrNotSignedUpToday)
		return attendance.SignupResponse{}, false, attendance.ErrNotSignedUpToday
	}
	if err != nil {
		return attendance.SignupResponse{}, false, fmt.Errorf("failed to check in: %w", err)
	}

	after := mapSignupToResponse(updated)
	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpCheckin,
		ResourceType: "signup_record",
		ResourceID:   &updated.ID,
		Description:  fmt.Sprintf("worker %s checked in at base %s", w.ID, req.BaseID),
		Before:       before,
		After:        after,
	})

	return after, true, nil
}

func (s *AttendanceServiceImpl) logCheckinFailure(ctx context.Context, baseID string, workerID *string, cause error) {
	details := map[string]any{"base_id": baseID, "reason": cause.Error()}
	if workerID != nil {
		details["worker_id"] = *workerID
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpCheckinFailed,
		ResourceType: "signup_record",
		Description:  "check-in rejected: " + cause.Error(),
		After:        details,
	})
}
