package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/notification"
	"github.com/harvestlink/harvest-backend-go/internal/domain/oplog"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
)

// ── signup records ──

type memSignupRepo struct {
	records map[string]attendance.SignupRecord
	writes  int

	// beforeUpdate mutates the stored row ahead of the guarded write,
	// standing in for a concurrent writer
	beforeUpdate func(stored *attendance.SignupRecord)
}

func newMemSignupRepo() *memSignupRepo {
	return &memSignupRepo{records: make(map[string]attendance.SignupRecord)}
}

func (m *memSignupRepo) Create(ctx context.Context, r attendance.SignupRecord) (attendance.SignupRecord, error) {
	for _, existing := range m.records {
		if existing.Status != attendance.StatusCancelled &&
			existing.WorkerID == r.WorkerID && existing.BaseID == r.BaseID && existing.WorkDate.Equal(r.WorkDate) {
			return attendance.SignupRecord{}, attendance.ErrAlreadySignedUp
		}
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = r
	m.writes++
	return r, nil
}

func (m *memSignupRepo) GetByID(ctx context.Context, id string) (attendance.SignupRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return attendance.SignupRecord{}, attendance.ErrSignupNotFound
	}
	return r, nil
}

func (m *memSignupRepo) GetActiveByKey(ctx context.Context, workerID, baseID string, workDate time.Time) (*attendance.SignupRecord, error) {
	for _, r := range m.records {
		if r.Status != attendance.StatusCancelled && r.WorkerID == workerID && r.BaseID == baseID && r.WorkDate.Equal(workDate) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memSignupRepo) CountProxiesBySponsor(ctx context.Context, sponsorID, baseID string, workDate time.Time) (int, error) {
	n := 0
	for _, r := range m.records {
		if r.IsProxy && r.Status != attendance.StatusCancelled && r.ProxySponsorID != nil &&
			*r.ProxySponsorID == sponsorID && r.BaseID == baseID && r.WorkDate.Equal(workDate) {
			n++
		}
	}
	return n, nil
}

func (m *memSignupRepo) UpdateStatus(ctx context.Context, r attendance.SignupRecord, expected attendance.SignupStatus) (attendance.SignupRecord, error) {
	stored, ok := m.records[r.ID]
	if !ok {
		return attendance.SignupRecord{}, attendance.ErrSignupNotFound
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(&stored)
		m.records[r.ID] = stored
	}
	if stored.Status != expected {
		return attendance.SignupRecord{}, attendance.ErrStatusChanged
	}
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	m.writes++
	return r, nil
}

func (m *memSignupRepo) visible(scope user.Scope, f attendance.RecordFilter) []attendance.SignupRecord {
	var out []attendance.SignupRecord
	for _, r := range m.records {
		if !scope.Allows(r.BaseID) {
			continue
		}
		if f.Status != nil && string(r.Status) != *f.Status {
			continue
		}
		if f.WorkerID != nil && r.WorkerID != *f.WorkerID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memSignupRepo) List(ctx context.Context, f attendance.RecordFilter, scope user.Scope) ([]attendance.SignupRecord, int64, error) {
	all := m.visible(scope, f)
	start := min((f.Page-1)*f.Limit, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memSignupRepo) ListForExport(ctx context.Context, f attendance.RecordFilter, scope user.Scope, limit int) ([]attendance.SignupRecord, error) {
	all := m.visible(scope, f)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memSignupRepo) CountByStatus(ctx context.Context, f attendance.StatsFilter, scope user.Scope) (map[attendance.SignupStatus]int64, error) {
	counts := make(map[attendance.SignupStatus]int64)
	for _, r := range m.visible(scope, attendance.RecordFilter{}) {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *memSignupRepo) CountFlags(ctx context.Context, f attendance.StatsFilter, scope user.Scope) (int64, int64, error) {
	var proxy, offline int64
	for _, r := range m.visible(scope, attendance.RecordFilter{}) {
		if r.Status == attendance.StatusCancelled {
			continue
		}
		if r.IsProxy {
			proxy++
		}
		if r.IsOfflineSync {
			offline++
		}
	}
	return proxy, offline, nil
}

func (m *memSignupRepo) StatsByBase(ctx context.Context, f attendance.StatsFilter, scope user.Scope) ([]attendance.BaseStats, error) {
	byBase := make(map[string]*attendance.BaseStats)
	for _, r := range m.visible(scope, attendance.RecordFilter{}) {
		if r.Status == attendance.StatusCancelled {
			continue
		}
		st, ok := byBase[r.BaseID]
		if !ok {
			st = &attendance.BaseStats{BaseID: r.BaseID}
			byBase[r.BaseID] = st
		}
		st.Total++
		switch r.Status {
		case attendance.StatusCheckedIn:
			st.CheckedIn++
		case attendance.StatusAbsent:
			st.Absent++
		}
	}
	out := make([]attendance.BaseStats, 0, len(byBase))
	for _, st := range byBase {
		out = append(out, *st)
	}
	return out, nil
}

func (m *memSignupRepo) MarkAbsentBefore(ctx context.Context, date time.Time) (int64, error) {
	var n int64
	for id, r := range m.records {
		if r.Status == attendance.StatusSignedUp && r.WorkDate.Before(date) {
			r.Status = attendance.StatusAbsent
			m.records[id] = r
			n++
		}
	}
	return n, nil
}

// ── workers ──

type memWorkerRepo struct {
	workers map[string]worker.Worker
}

func (m *memWorkerRepo) add(name, phone string) worker.Worker {
	w := worker.Worker{
		ID:    uuid.NewString(),
		UID:   uuid.Must(uuid.NewV7()).String(),
		Name:  name,
		Phone: phone,
	}
	m.workers[w.ID] = w
	return w
}

func (m *memWorkerRepo) Create(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	w.ID = uuid.NewString()
	m.workers[w.ID] = w
	return w, nil
}

func (m *memWorkerRepo) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	w, ok := m.workers[id]
	if !ok {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	return w, nil
}

func (m *memWorkerRepo) GetByUID(ctx context.Context, uid string) (worker.Worker, error) {
	for _, w := range m.workers {
		if w.UID == uid {
			return w, nil
		}
	}
	return worker.Worker{}, worker.ErrWorkerNotFound
}

func (m *memWorkerRepo) GetByPhone(ctx context.Context, phone string) (worker.Worker, error) {
	for _, w := range m.workers {
		if w.Phone == phone {
			return w, nil
		}
	}
	return worker.Worker{}, worker.ErrWorkerNotFound
}

func (m *memWorkerRepo) BackfillLookupHashes(ctx context.Context, afterID string, limit int) (worker.HashBackfillResult, error) {
	return worker.HashBackfillResult{}, nil
}

// ── bases and jobs ──

type memBaseRepo struct {
	bases map[string]base.Base
}

func (m *memBaseRepo) Create(ctx context.Context, b base.Base) (base.Base, error) {
	b.ID = uuid.NewString()
	m.bases[b.ID] = b
	return b, nil
}

func (m *memBaseRepo) GetByID(ctx context.Context, id string) (base.Base, error) {
	b, ok := m.bases[id]
	if !ok {
		return base.Base{}, base.ErrBaseNotFound
	}
	return b, nil
}

func (m *memBaseRepo) List(ctx context.Context, scope user.Scope) ([]base.Base, error) {
	var out []base.Base
	for _, b := range m.bases {
		if scope.Allows(b.ID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBaseRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	return nil, nil
}

type memJobRepo struct {
	jobs map[string]base.Job
}

func (m *memJobRepo) Create(ctx context.Context, j base.Job) (base.Job, error) {
	j.ID = uuid.NewString()
	m.jobs[j.ID] = j
	return j, nil
}

func (m *memJobRepo) GetByID(ctx context.Context, id string) (base.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return base.Job{}, base.ErrJobNotFound
	}
	return j, nil
}

func (m *memJobRepo) Update(ctx context.Context, j base.Job) (base.Job, error) {
	m.jobs[j.ID] = j
	return j, nil
}

func (m *memJobRepo) ListByBase(ctx context.Context, baseID string) ([]base.Job, error) {
	var out []base.Job
	for _, j := range m.jobs {
		if j.BaseID == baseID {
			out = append(out, j)
		}
	}
	return out, nil
}

// ── collaborators ──

type recordingLogger struct {
	mu      sync.Mutex
	entries []oplog.Entry
}

func (r *recordingLogger) Log(ctx context.Context, entry oplog.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingLogger) ops() []oplog.OperationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]oplog.OperationType, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Operation)
	}
	return out
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.SignupConfirmation
}

func (r *recordingSender) SendSignupConfirmation(ctx context.Context, msg notification.SignupConfirmation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return true, nil
}

// roleScope mirrors the production resolver without a base repository.
type roleScope struct{}

func (roleScope) Resolve(ctx context.Context) (user.Scope, error) {
	identity, err := user.IdentityFromContext(ctx)
	if err != nil {
		return user.Scope{}, err
	}
	switch identity.Role {
	case user.RoleAdmin:
		return user.GlobalScope(), nil
	case user.RoleStaff, user.RoleBaseManager:
		return user.Scope{BaseIDs: identity.BaseIDs}, nil
	default:
		return user.Scope{}, nil
	}
}
