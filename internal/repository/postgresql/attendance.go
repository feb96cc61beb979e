package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const signupColumns = `
	s.id, s.worker_id, s.base_id, s.job_id, s.work_date, s.status, s.checkin_time,
	s.is_proxy, s.proxy_sponsor_id, s.is_offline_sync, s.created_at, s.updated_at`

const signupJoinedColumns = signupColumns + `,
	w.name AS worker_name, b.name AS base_name, j.title AS job_title`

const signupJoins = `
	LEFT JOIN workers w ON w.id = s.worker_id
	LEFT JOIN bases b ON b.id = s.base_id
	LEFT JOIN jobs j ON j.id = s.job_id`

type signupRepository struct {
	db *database.DB
}

func NewSignupRepository(db *database.DB) attendance.SignupRepository {
	return &signupRepository{db: db}
}

func scanSignup(row pgx.Row, joined bool) (attendance.SignupRecord, error) {
	var r attendance.SignupRecord
	dest := []any{
		&r.ID, &r.WorkerID, &r.BaseID, &r.JobID, &r.WorkDate, &r.Status, &r.CheckinTime,
		&r.IsProxy, &r.ProxySponsorID, &r.IsOfflineSync, &r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &r.WorkerName, &r.BaseName, &r.JobTitle)
	}
	err := row.Scan(dest...)
	return r, err
}

// Create implements attendance.SignupRepository.
func (a *signupRepository) Create(ctx context.Context, record attendance.SignupRecord) (attendance.SignupRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO signup_records AS s (
			worker_id, base_id, job_id, work_date, status, checkin_time,
			is_proxy, proxy_sponsor_id, is_offline_sync
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + signupColumns

	created, err := scanSignup(q.QueryRow(ctx, query,
		record.WorkerID,
		record.BaseID,
		record.JobID,
		record.WorkDate,
		record.Status,
		record.CheckinTime,
		record.IsProxy,
		record.ProxySponsorID,
		record.IsOfflineSync,
	), false)
	if err != nil {
		if isUniqueViolation(err, "signup_records_active_key") {
			return attendance.SignupRecord{}, attendance.ErrAlreadySignedUp
		}
		return attendance.SignupRecord{}, fmt.Errorf("failed to insert signup record: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.SignupRepository.
func (a *signupRepository) GetByID(ctx context.Context, id string) (attendance.SignupRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + signupJoinedColumns + ` FROM signup_records s ` + signupJoins + ` WHERE s.id = $1`
	r, err := scanSignup(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.SignupRecord{}, attendance.ErrSignupNotFound
		}
		return attendance.SignupRecord{}, fmt.Errorf("failed to get signup record: %w", err)
	}
	return r, nil
}

// GetActiveByKey implements attendance.SignupRepository.
func (a *signupRepository) GetActiveByKey(ctx context.Context, workerID, baseID string, workDate time.Time) (*attendance.SignupRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + signupJoinedColumns + `
		FROM signup_records s ` + signupJoins + `
		WHERE s.worker_id = $1 AND s.base_id = $2 AND s.work_date = $3 AND s.status <> 'CANCELLED'
	`
	r, err := scanSignup(q.QueryRow(ctx, query, workerID, baseID, workDate), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active signup record: %w", err)
	}
	return &r, nil
}

// CountProxiesBySponsor implements attendance.SignupRepository.
func (a *signupRepository) CountProxiesBySponsor(ctx context.Context, sponsorID, baseID string, workDate time.Time) (int, error) {
	q := GetQuerier(ctx, a.db)

	var n int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM signup_records
		WHERE proxy_sponsor_id = $1 AND base_id = $2 AND work_date = $3
		  AND is_proxy AND status <> 'CANCELLED'
	`, sponsorID, baseID, workDate).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count proxies: %w", err)
	}
	return n, nil
}

// UpdateStatus implements attendance.SignupRepository.
func (a *signupRepository) UpdateStatus(ctx context.Context, record attendance.SignupRecord, expected attendance.SignupStatus) (attendance.SignupRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE signup_records AS s
		SET status = $1, checkin_time = $2, is_offline_sync = $3, updated_at = NOW()
		WHERE s.id = $4 AND s.status = $5
		RETURNING ` + signupColumns

	updated, err := scanSignup(q.QueryRow(ctx, query,
		record.Status, record.CheckinTime, record.IsOfflineSync, record.ID, expected,
	), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM signup_records WHERE id = $1)`, record.ID).Scan(&exists); err != nil {
				return attendance.SignupRecord{}, fmt.Errorf("failed to check signup record: %w", err)
			}
			if exists {
				return attendance.SignupRecord{}, attendance.ErrStatusChanged
			}
			return attendance.SignupRecord{}, attendance.ErrSignupNotFound
		}
		return attendance.SignupRecord{}, fmt.Errorf("failed to update signup record: %w", err)
	}

	// carry joined display fields through
	updated.WorkerName, updated.BaseName, updated.JobTitle = record.WorkerName, record.BaseName, record.JobTitle
	return updated, nil
}

func recordWhere(filter attendance.RecordFilter, scope user.Scope) *whereBuilder {
	var w whereBuilder
	w.scope("s.base_id", scope)

	if filter.BaseID != nil && *filter.BaseID != "" {
		w.add("s.base_id = $%d", *filter.BaseID)
	}
	if filter.WorkerID != nil && *filter.WorkerID != "" {
		w.add("s.worker_id = $%d", *filter.WorkerID)
	}
	if filter.JobID != nil && *filter.JobID != "" {
		w.add("s.job_id = $%d", *filter.JobID)
	}
	if filter.Status != nil && *filter.Status != "" {
		w.add("s.status = $%d", *filter.Status)
	}
	if filter.Date != nil && *filter.Date != "" {
		w.add("s.work_date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		w.add("s.work_date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		w.add("s.work_date <= $%d::date", *filter.EndDate)
	}
	if filter.IsProxy != nil {
		w.add("s.is_proxy = $%d", *filter.IsProxy)
	}
	return &w
}

func recordOrderBy(filter attendance.RecordFilter) string {
	field := "s.work_date"
	switch filter.SortBy {
	case "checkin_time":
		field = "s.checkin_time"
	case "created_at":
		field = "s.created_at"
	case "status":
		field = "s.status"
	}
	order := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		order = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, s.created_at DESC", field, order)
}

func (a *signupRepository) queryRecords(ctx context.Context, query string, args ...any) ([]attendance.SignupRecord, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signup records: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.SignupRecord, 0)
	for rows.Next() {
		r, err := scanSignup(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signup record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// List implements attendance.SignupRepository.
func (a *signupRepository) List(ctx context.Context, filter attendance.RecordFilter, scope user.Scope) ([]attendance.SignupRecord, int64, error) {
	q := GetQuerier(ctx, a.db)
	where := recordWhere(filter, scope)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM signup_records s WHERE `+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count signup records: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)

	query := fmt.Sprintf(`
		SELECT %s
		FROM signup_records s %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, signupJoinedColumns, signupJoins, where.String(), recordOrderBy(filter), where.next(), where.next()+1)

	args := append(where.args, limit, (page-1)*limit)
	records, err := a.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListForExport implements attendance.SignupRepository.
func (a *signupRepository) ListForExport(ctx context.Context, filter attendance.RecordFilter, scope user.Scope, limit int) ([]attendance.SignupRecord, error) {
	where := recordWhere(filter, scope)

	query := fmt.Sprintf(`
		SELECT %s
		FROM signup_records s %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d
	`, signupJoinedColumns, signupJoins, where.String(), recordOrderBy(filter), where.next())

	return a.queryRecords(ctx, query, append(where.args, limit)...)
}

func statsWhere(filter attendance.StatsFilter, scope user.Scope) *whereBuilder {
	var w whereBuilder
	w.scope("s.base_id", scope)

	if filter.BaseID != nil && *filter.BaseID != "" {
		w.add("s.base_id = $%d", *filter.BaseID)
	}
	if filter.Date != nil && *filter.Date != "" {
		w.add("s.work_date = $%d::date", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		w.add("s.work_date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		w.add("s.work_date <= $%d::date", *filter.EndDate)
	}
	return &w
}

// CountByStatus implements attendance.SignupRepository.
func (a *signupRepository) CountByStatus(ctx context.Context, filter attendance.StatsFilter, scope user.Scope) (map[attendance.SignupStatus]int64, error) {
	q := GetQuerier(ctx, a.db)
	where := statsWhere(filter, scope)

	rows, err := q.Query(ctx, `
		SELECT s.status, COUNT(*)
		FROM signup_records s
		WHERE `+where.String()+`
		GROUP BY s.status
	`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[attendance.SignupStatus]int64)
	for rows.Next() {
		var (
			status attendance.SignupStatus
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountFlags implements attendance.SignupRepository.
func (a *signupRepository) CountFlags(ctx context.Context, filter attendance.StatsFilter, scope user.Scope) (int64, int64, error) {
	q := GetQuerier(ctx, a.db)
	where := statsWhere(filter, scope)
	where.addRaw("s.status <> 'CANCELLED'")

	var proxy, offline int64
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE s.is_proxy),
			COUNT(*) FILTER (WHERE s.is_offline_sync)
		FROM signup_records s
		WHERE `+where.String(), where.args...).Scan(&proxy, &offline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count flags: %w", err)
	}
	return proxy, offline, nil
}

// StatsByBase implements attendance.SignupRepository. Cancelled records are excluded from every count.
func (a *signupRepository) StatsByBase(ctx context.Context, filter attendance.StatsFilter, scope user.Scope) ([]attendance.BaseStats, error) {
	q := GetQuerier(ctx, a.db)
	where := statsWhere(filter, scope)
	where.addRaw("s.status <> 'CANCELLED'")

	rows, err := q.Query(ctx, `
		SELECT
			b.id, b.name,
			COUNT(*),
			COUNT(*) FILTER (WHERE s.status = 'CHECKED_IN'),
			COUNT(*) FILTER (WHERE s.status = 'ABSENT')
		FROM signup_records s
		JOIN bases b ON b.id = s.base_id
		WHERE `+where.String()+`
		GROUP BY b.id, b.name
		ORDER BY b.name
	`, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query base stats: %w", err)
	}
	defer rows.Close()

	stats := make([]attendance.BaseStats, 0)
	for rows.Next() {
		var st attendance.BaseStats
		if err := rows.Scan(&st.BaseID, &st.BaseName, &st.Total, &st.CheckedIn, &st.Absent); err != nil {
			return nil, fmt.Errorf("failed to scan base stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// MarkAbsentBefore implements attendance.SignupRepository.
func (a *signupRepository) MarkAbsentBefore(ctx context.Context, date time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE signup_records
		SET status = 'ABSENT', updated_at = NOW()
		WHERE status = 'SIGNED_UP' AND work_date < $1
	`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to mark absent: %w", err)
	}
	return tag.RowsAffected(), nil
}
