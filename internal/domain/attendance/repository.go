package attendance

import (
	"context"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
)

// SignupRepository defines data access for signup records.
// Listing methods take the caller's scope so base isolation is enforced in SQL.
type SignupRepository interface {
	// Create inserts a record. A unique-index collision returns ErrAlreadySignedUp.
	Create(ctx context.Context, record SignupRecord) (SignupRecord, error)

	// GetByID returns ErrSignupNotFound when missing
	GetByID(ctx context.Context, id string) (SignupRecord, error)

	// GetActiveByKey returns the non-cancelled record for the key, or nil
	GetActiveByKey(ctx context.Context, workerID, baseID string, workDate time.Time) (*SignupRecord, error)

	// CountProxiesBySponsor counts non-cancelled proxy records a sponsor created for a base and date
	CountProxiesBySponsor(ctx context.Context, sponsorID, baseID string, workDate time.Time) (int, error)

	// UpdateStatus persists status, checkin_time and is_offline_sync when the
	// stored status still equals expected, otherwise it returns ErrStatusChanged
	UpdateStatus(ctx context.Context, record SignupRecord, expected SignupStatus) (SignupRecord, error)

	List(ctx context.Context, filter RecordFilter, scope user.Scope) ([]SignupRecord, int64, error)

	// ListForExport returns up to limit rows matching filter, newest first
	ListForExport(ctx context.Context, filter RecordFilter, scope user.Scope, limit int) ([]SignupRecord, error)

	CountByStatus(ctx context.Context, filter StatsFilter, scope user.Scope) (map[SignupStatus]int64, error)
	CountFlags(ctx context.Context, filter StatsFilter, scope user.Scope) (proxy int64, offline int64, err error)
	StatsByBase(ctx context.Context, filter StatsFilter, scope user.Scope) ([]BaseStats, error)

	// MarkAbsentBefore turns SIGNED_UP records dated before date into ABSENT
	MarkAbsentBefore(ctx context.Context, date time.Time) (int64, error)
}
