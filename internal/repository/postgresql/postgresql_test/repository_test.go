package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/crypto"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/harvestlink/harvest-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	db       *database.DB
	workers  worker.WorkerRepository
	bases    base.BaseRepository
	jobs     base.JobRepository
	signups  attendance.SignupRepository
	salaries salary.SalaryRepository
	payments salary.PaymentRepository
	oplog    oplog.Repository
}

// setupRepos skips the test unless TEST_DATABASE_URL points at a disposable database.
func setupRepos(t *testing.T) (*repos, func()) {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, setup.TruncateAllTables(ctx))

	cipher, err := crypto.NewCipher("repository-test-key")
	require.NoError(t, err)

	salaries := postgresql.NewSalaryRepository(setup.DB)
	r := &repos{
		db:       setup.DB,
		workers:  postgresql.NewWorkerRepository(setup.DB, cipher),
		bases:    postgresql.NewBaseRepository(setup.DB),
		jobs:     postgresql.NewJobRepository(setup.DB),
		signups:  postgresql.NewSignupRepository(setup.DB),
		salaries: salaries,
		payments: postgresql.NewPaymentRepository(setup.DB, salaries),
		oplog:    postgresql.NewOplogRepository(setup.DB),
	}
	return r, func() {
		_ = setup.TruncateAllTables(ctx)
		setup.Close()
	}
}

type seed struct {
	worker worker.Worker
	base   base.Base
	job    base.Job
}

func seedData(t *testing.T, r *repos, phone string) seed {
	t.Helper()
	ctx := context.Background()

	w, err := r.workers.Create(ctx, worker.Worker{
		UID:      uuid.Must(uuid.NewV7()).String(),
		Name:     "Li Wei",
		Phone:    phone,
		IDNumber: "11010519491231002X" + phone[len(phone)-1:],
	})
	require.NoError(t, err)

	b, err := r.bases.Create(ctx, base.Base{Name: "Base " + phone})
	require.NoError(t, err)

	j, err := r.jobs.Create(ctx, base.Job{
		BaseID:    b.ID,
		Title:     "Picking",
		PayType:   base.PayTypeHourly,
		UnitPrice: decimal.NewFromInt(20),
		IsActive:  true,
	})
	require.NoError(t, err)

	return seed{worker: w, base: b, job: j}
}

var workDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestWorkerRepository_EncryptedLookup(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	s := seedData(t, r, "13800138000")

	byPhone, err := r.workers.GetByPhone(ctx, "13800138000")
	require.NoError(t, err)
	assert.Equal(t, s.worker.ID, byPhone.ID)
	assert.Equal(t, "13800138000", byPhone.Phone)

	byUID, err := r.workers.GetByUID(ctx, s.worker.UID)
	require.NoError(t, err)
	assert.Equal(t, s.worker.ID, byUID.ID)

	_, err = r.workers.Create(ctx, worker.Worker{
		UID: uuid.NewString(), Name: "Dup", Phone: "13800138000", IDNumber: "110105194912310000",
	})
	assert.ErrorIs(t, err, worker.ErrPhoneExists)

	_, err = r.workers.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

func TestWorkerRepository_BackfillPagesPastUndecryptableRows(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	for _, phone := range []string{"13800138011", "13800138012", "13800138013"} {
		_, err := r.workers.Create(ctx, worker.Worker{
			UID: uuid.Must(uuid.NewV7()).String(), Name: "Backfill", Phone: phone, IDNumber: "id-" + phone,
		})
		require.NoError(t, err)
	}

	_, err := r.db.Exec(ctx, `UPDATE workers SET phone_hash = NULL, id_number_hash = NULL`)
	require.NoError(t, err)
	_, err = r.db.Exec(ctx, `UPDATE workers SET phone_enc = 'garbage' WHERE id = (SELECT MIN(id) FROM workers)`)
	require.NoError(t, err)

	first, err := r.workers.BackfillLookupHashes(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Scanned)
	assert.Equal(t, 1, first.Skipped)
	assert.Zero(t, first.Updated)
	require.NotEmpty(t, first.LastID)

	rest, err := r.workers.BackfillLookupHashes(ctx, first.LastID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, rest.Scanned)
	assert.Equal(t, 2, rest.Updated)

	var missing int
	require.NoError(t, r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workers WHERE phone_hash IS NULL`).Scan(&missing))
	assert.Equal(t, 1, missing)
}

func TestSignupRepository_ActiveKeyIsUnique(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	s := seedData(t, r, "13800138001")
	rec := attendance.SignupRecord{
		WorkerID: s.worker.ID, BaseID: s.base.ID, JobID: s.job.ID,
		WorkDate: workDate, Status: attendance.StatusSignedUp,
	}

	first, err := r.signups.Create(ctx, rec)
	require.NoError(t, err)

	_, err = r.signups.Create(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrAlreadySignedUp)

	// a cancelled record frees the key
	first.Status = attendance.StatusCancelled
	_, err = r.signups.UpdateStatus(ctx, first, attendance.StatusSignedUp)
	require.NoError(t, err)

	_, err = r.signups.Create(ctx, rec)
	require.NoError(t, err)

	active, err := r.signups.GetActiveByKey(ctx, s.worker.ID, s.base.ID, workDate)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.NotEqual(t, first.ID, active.ID)
	require.NotNil(t, active.JobTitle)
	assert.Equal(t, "Picking", *active.JobTitle)
}

func TestSignupRepository_CheckinAndScopedListing(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	a := seedData(t, r, "13800138002")
	b := seedData(t, r, "13800138003")

	recA, err := r.signups.Create(ctx, attendance.SignupRecord{
		WorkerID: a.worker.ID, BaseID: a.base.ID, JobID: a.job.ID, WorkDate: workDate, Status: attendance.StatusSignedUp,
	})
	require.NoError(t, err)
	_, err = r.signups.Create(ctx, attendance.SignupRecord{
		WorkerID: b.worker.ID, BaseID: b.base.ID, JobID: b.job.ID, WorkDate: workDate, Status: attendance.StatusSignedUp,
	})
	require.NoError(t, err)

	recA.MarkCheckedIn(time.Now(), false)
	checked, err := r.signups.UpdateStatus(ctx, recA, attendance.StatusSignedUp)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, checked.Status)
	require.NotNil(t, checked.CheckinTime)

	records, total, err := r.signups.List(ctx, attendance.RecordFilter{Page: 1, Limit: 20}, user.Scope{BaseIDs: []string{a.base.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, recA.ID, records[0].ID)

	_, total, err = r.signups.List(ctx, attendance.RecordFilter{Page: 1, Limit: 20}, user.Scope{})
	require.NoError(t, err)
	assert.Zero(t, total)

	counts, err := r.signups.CountByStatus(ctx, attendance.StatsFilter{}, user.GlobalScope())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[attendance.StatusCheckedIn])
	assert.Equal(t, int64(1), counts[attendance.StatusSignedUp])

	marked, err := r.signups.MarkAbsentBefore(ctx, workDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	stats, err := r.signups.StatsByBase(ctx, attendance.StatsFilter{}, user.GlobalScope())
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestSignupRepository_StaleStatusWriteIsRejected(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	s := seedData(t, r, "13800138005")
	rec, err := r.signups.Create(ctx, attendance.SignupRecord{
		WorkerID: s.worker.ID, BaseID: s.base.ID, JobID: s.job.ID, WorkDate: workDate, Status: attendance.StatusSignedUp,
	})
	require.NoError(t, err)

	stale := rec

	rec.MarkCheckedIn(time.Now(), false)
	checked, err := r.signups.UpdateStatus(ctx, rec, attendance.StatusSignedUp)
	require.NoError(t, err)

	// a cancel built from the pre-checkin read must not land
	stale.Status = attendance.StatusCancelled
	_, err = r.signups.UpdateStatus(ctx, stale, attendance.StatusSignedUp)
	assert.ErrorIs(t, err, attendance.ErrStatusChanged)

	stored, err := r.signups.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, stored.Status)
	require.NotNil(t, stored.CheckinTime)
	assert.True(t, stored.CheckinTime.Equal(*checked.CheckinTime))

	stale.ID = uuid.NewString()
	_, err = r.signups.UpdateStatus(ctx, stale, attendance.StatusSignedUp)
	assert.ErrorIs(t, err, attendance.ErrSignupNotFound)
}

func TestSalaryAndPaymentRepositories(t *testing.T) {
	r, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	s := seedData(t, r, "13800138004")
	rec, err := r.signups.Create(ctx, attendance.SignupRecord{
		WorkerID: s.worker.ID, BaseID: s.base.ID, JobID: s.job.ID, WorkDate: workDate, Status: attendance.StatusSignedUp,
	})
	require.NoError(t, err)
	rec.MarkCheckedIn(time.Now(), false)
	_, err = r.signups.UpdateStatus(ctx, rec, attendance.StatusSignedUp)
	require.NoError(t, err)

	adminID := uuid.NewString()
	draft := salary.SalaryDraft{
		SignupID:          rec.ID,
		WorkDuration:      decimal.NewFromInt(6),
		UnitPriceSnapshot: decimal.NewFromInt(20),
		PayType:           base.PayTypeHourly,
		TotalAmount:       decimal.NewFromInt(120),
		Status:            salary.SalaryStatusPending,
		PayoutType:        salary.PayoutCash,
		AdminID:           adminID,
	}
	saved, err := r.salaries.Upsert(ctx, draft)
	require.NoError(t, err)
	assert.True(t, saved.TotalAmount.Equal(decimal.NewFromInt(120)))

	draft.WorkDuration = decimal.NewFromInt(8)
	draft.TotalAmount = decimal.NewFromInt(160)
	resaved, err := r.salaries.Upsert(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, resaved.ID)

	_, err = r.salaries.UpdateStatus(ctx, saved.ID, salary.SalaryStatusConfirmed)
	require.NoError(t, err)
	_, err = r.salaries.Upsert(ctx, draft)
	assert.ErrorIs(t, err, salary.ErrSalaryLocked)

	payment, err := r.payments.Create(ctx, salary.Payment{
		SalaryID: saved.ID, Amount: resaved.TotalAmount, PayoutType: salary.PayoutCash,
		Status: salary.PaymentStatusPending, CreatedBy: adminID,
	})
	require.NoError(t, err)
	_, err = r.payments.Create(ctx, salary.Payment{
		SalaryID: saved.ID, Amount: resaved.TotalAmount, PayoutType: salary.PayoutCash,
		Status: salary.PaymentStatusPending, CreatedBy: adminID,
	})
	assert.ErrorIs(t, err, salary.ErrPaymentExists)

	_, err = r.payments.Complete(ctx, payment.ID, "v.jpg", adminID, time.Now())
	assert.ErrorIs(t, err, salary.ErrPaymentNotConfirmed)

	_, err = r.payments.MarkConfirmed(ctx, payment.ID, "s.jpg")
	require.NoError(t, err)
	paid, err := r.payments.Complete(ctx, payment.ID, "v.jpg", adminID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, salary.PaymentStatusPaid, paid.Status)

	stored, err := r.salaries.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, salary.SalaryStatusPaid, stored.Status)

	require.NoError(t, r.oplog.Insert(ctx, oplog.Entry{
		Operation:    oplog.OpPaymentComplete,
		ResourceType: "payment",
		ResourceID:   &paid.ID,
		UserID:       &adminID,
		Description:  "payment completed",
		After:        map[string]string{"status": "PAID"},
	}))
}
