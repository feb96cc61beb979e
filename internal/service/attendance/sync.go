package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

// SyncOfflineRecords implements attendance.AttendanceService.
// Records are applied one by one; a failing record never stops the batch.
func (s *AttendanceServiceImpl) SyncOfflineRecords(ctx context.Context, req attendance.SyncRequest) (attendance.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SyncResponse{}, err
	}

	scope, err := s.scope.Resolve(ctx)
	if err != nil {
		return attendance.SyncResponse{}, err
	}

	results := make([]attendance.SyncResult, 0, len(req.Records))
	counts := map[attendance.SyncResultStatus]int{}
	for i, rec := range req.Records {
		result := s.syncOne(ctx, scope, i, rec)
		counts[result.Status]++
		results = append(results, result)
	}

	s.oplog.Log(ctx, oplog.Entry{
		Operation:    oplog.OpOfflineSync,
		ResourceType: "signup_record",
		Description: fmt.Sprintf("offline sync: %d records, %d success, %d skipped, %d error",
			len(req.Records), counts[attendance.SyncSuccess], counts[attendance.SyncSkipped], counts[attendance.SyncError]),
		After: results,
	})

	return attendance.SyncResponse{
		Total:   len(req.Records),
		Results: results,
	}, nil
}

func (s *AttendanceServiceImpl) syncOne(ctx context.Context, scope user.Scope, index int, rec attendance.OfflineRecord) attendance.SyncResult {
	result := attendance.SyncResult{Index: index, UID: rec.UID}
	fail := func(msg string) attendance.SyncResult {
		result.Status = attendance.SyncError
		result.Message = msg
		return result
	}

	if validator.IsEmpty(rec.UID) {
		return fail("uid is required")
	}
	if !validator.IsValidUUID(rec.BaseID) {
		return fail("base_id must be a valid UUID")
	}
	if !scope.Allows(rec.BaseID) {
		return fail(user.ErrBaseAccessDenied.Error())
	}

	w, err := s.WorkerRepository.GetByUID(ctx, rec.UID)
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			return fail(err.Error())
		}
		slog.Warn("offline sync: worker lookup failed", "index", index, "error", err)
		return fail("failed to look up worker")
	}

	workDate := s.today()
	if rec.Date != nil && *rec.Date != "" {
		workDate, err = s.calendar.ParseDate(*rec.Date)
		if err != nil {
			return fail("date must be in YYYY-MM-DD format")
		}
	}

	checkinAt := s.now()
	if rec.CheckinTime != nil && *rec.CheckinTime != "" {
		t, ok := validator.IsValidDateTime(*rec.CheckinTime)
		if !ok {
			return fail("checkin_time must be an RFC3339 timestamp")
		}
		checkinAt = t
	}

	record, err := s.SignupRepository.GetActiveByKey(ctx, w.ID, rec.BaseID, workDate)
	if err != nil {
		slog.Warn("offline sync: signup lookup failed", "index", index, "error", err)
		return fail("failed to look up signup record")
	}
	if record == nil {
		return fail(attendance.ErrNoSignupRecord.Error())
	}

	result.SignupID = &record.ID
	if record.IsCheckedIn() {
		result.Status = attendance.SyncSkipped
		result.Message = "already checked in"
		return result
	}

	// ABSENT is accepted: the absence batch may have run before the device came back online
	expected := record.Status
	record.MarkCheckedIn(checkinAt, true)
	if _, err := s.SignupRepository.UpdateStatus(ctx, *record, expected); err != nil {
		if errors.Is(err, attendance.ErrStatusChanged) {
			current, getErr := s.SignupRepository.GetByID(ctx, record.ID)
			if getErr == nil && current.IsCheckedIn() {
				result.Status = attendance.SyncSkipped
				result.Message = "already checked in"
				return result
			}
			if getErr == nil && current.Status == attendance.StatusCancelled {
				return fail(attendance.ErrNoSignupRecord.Error())
			}
		}
		slog.Warn("offline sync: update failed", "index", index, "signup_id", record.ID, "error", err)
		return fail("failed to update signup record")
	}

	result.Status = attendance.SyncSuccess
	return result
}

// MarkAbsent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsent(ctx context.Context) (int64, error) {
	n, err := s.SignupRepository.MarkAbsentBefore(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("failed to mark absent: %w", err)
	}
	return n, nil
}
