package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
)

const hashBackfillBatch = 200

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	workerRepo        worker.WorkerRepository
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, workerRepo worker.WorkerRepository) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		workerRepo:        workerRepo,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_signups", time.Hour, 5*time.Minute, j.MarkAbsentSignups)
	scheduler.AddJob("backfill_worker_lookup_hashes", 6*time.Hour, 10*time.Minute, j.BackfillWorkerLookupHashes)
}

// MarkAbsentSignups turns yesterday's (and older) unattended sign-ups into ABSENT.
func (j *AttendanceJobs) MarkAbsentSignups(ctx context.Context) error {
	n, err := j.attendanceService.MarkAbsent(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark absent signups: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: marked signups absent", "count", n)
	}
	return nil
}

// BackfillWorkerLookupHashes fills phone/id-number hashes for rows written before hashing existed.
// Rows whose ciphertext cannot be decrypted are skipped, not failed, and each
// run walks the table once by id so skipped rows never hide later ones.
func (j *AttendanceJobs) BackfillWorkerLookupHashes(ctx context.Context) error {
	total := worker.HashBackfillResult{}
	afterID := ""
	for {
		res, err := j.workerRepo.BackfillLookupHashes(ctx, afterID, hashBackfillBatch)
		if err != nil {
			return fmt.Errorf("failed to backfill lookup hashes: %w", err)
		}

		total.Scanned += res.Scanned
		total.Updated += res.Updated
		total.Skipped += res.Skipped

		if res.Scanned < hashBackfillBatch || res.LastID == "" {
			break
		}
		afterID = res.LastID
	}

	if total.Scanned > 0 {
		slog.Info("Cron: lookup hash backfill finished",
			"scanned", total.Scanned,
			"updated", total.Updated,
			"skipped", total.Skipped,
		)
	}
	return nil
}
