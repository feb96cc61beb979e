package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendance struct {
	attendance.AttendanceService
	calls  int
	marked int64
	err    error
}

func (s *stubAttendance) MarkAbsent(ctx context.Context) (int64, error) {
	s.calls++
	return s.marked, s.err
}

type batchWorkers struct {
	worker.WorkerRepository
	batches []worker.HashBackfillResult
	calls   int
	cursors []string
}

func (b *batchWorkers) BackfillLookupHashes(ctx context.Context, afterID string, limit int) (worker.HashBackfillResult, error) {
	b.cursors = append(b.cursors, afterID)
	if b.calls >= len(b.batches) {
		return worker.HashBackfillResult{}, nil
	}
	res := b.batches[b.calls]
	b.calls++
	return res, nil
}

func TestMarkAbsentSignups(t *testing.T) {
	svc := &stubAttendance{marked: 3}
	jobs := NewAttendanceJobs(svc, &batchWorkers{})

	require.NoError(t, jobs.MarkAbsentSignups(context.Background()))
	assert.Equal(t, 1, svc.calls)

	svc.err = errors.New("db down")
	err := jobs.MarkAbsentSignups(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestBackfillWorkerLookupHashes_LoopsUntilShortBatch(t *testing.T) {
	workers := &batchWorkers{batches: []worker.HashBackfillResult{
		{Scanned: hashBackfillBatch, Updated: hashBackfillBatch, LastID: "a"},
		{Scanned: hashBackfillBatch, Updated: 190, Skipped: 10, LastID: "b"},
		{Scanned: 40, Updated: 40, LastID: "c"},
		{Scanned: 99, Updated: 99, LastID: "d"},
	}}
	jobs := NewAttendanceJobs(&stubAttendance{}, workers)

	require.NoError(t, jobs.BackfillWorkerLookupHashes(context.Background()))
	assert.Equal(t, 3, workers.calls)
	assert.Equal(t, []string{"", "a", "b"}, workers.cursors)
}

func TestBackfillWorkerLookupHashes_PagesPastUndecryptableBatch(t *testing.T) {
	workers := &batchWorkers{batches: []worker.HashBackfillResult{
		{Scanned: hashBackfillBatch, Skipped: hashBackfillBatch, LastID: "stuck"},
		{Scanned: 12, Updated: 12, LastID: "tail"},
	}}
	jobs := NewAttendanceJobs(&stubAttendance{}, workers)

	require.NoError(t, jobs.BackfillWorkerLookupHashes(context.Background()))
	assert.Equal(t, 2, workers.calls)
	assert.Equal(t, []string{"", "stuck"}, workers.cursors)
}

func TestScheduler_RunOnce(t *testing.T) {
	svc := &stubAttendance{}
	s := NewScheduler()
	NewAttendanceJobs(svc, &batchWorkers{}).RegisterJobs(s)

	s.RunOnce(context.Background())

	assert.Equal(t, 1, svc.calls)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob("tick", time.Hour, time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_TimeoutBoundsJob(t *testing.T) {
	var deadline atomic.Bool
	s := NewScheduler()
	s.AddJob("slow", time.Hour, 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})

	s.RunOnce(context.Background())

	assert.True(t, deadline.Load())
}
