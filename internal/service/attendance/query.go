package attendance

import (
	"context"
	"fmt"
	"math"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

// GetRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	scope, ok, err := s.narrowScope(ctx, filter.BaseID)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}
	if !ok {
		return emptyRecords(filter), nil
	}

	records, total, err := s.SignupRepository.List(ctx, filter, scope)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list signup records: %w", err)
	}

	responses := make([]attendance.SignupResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapSignupToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}, nil
}

func emptyRecords(filter attendance.RecordFilter) attendance.ListRecordsResponse {
	return attendance.ListRecordsResponse{
		Page:    filter.Page,
		Limit:   filter.Limit,
		Showing: "0 of 0",
		Records: []attendance.SignupResponse{},
	}
}

// GetStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStats(ctx context.Context, filter attendance.StatsFilter) (attendance.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.StatsResponse{}, err
	}

	scope, ok, err := s.narrowScope(ctx, filter.BaseID)
	if err != nil {
		return attendance.StatsResponse{}, err
	}
	if !ok {
		return attendance.StatsResponse{}, nil
	}

	var (
		byStatus       map[attendance.SignupStatus]int64
		proxy, offline int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.SignupRepository.CountByStatus(gCtx, filter, scope)
		if err != nil {
			return fmt.Errorf("failed to count by status: %w", err)
		}
		byStatus = counts
		return nil
	})

	g.Go(func() error {
		p, o, err := s.SignupRepository.CountFlags(gCtx, filter, scope)
		if err != nil {
			return fmt.Errorf("failed to count flags: %w", err)
		}
		proxy, offline = p, o
		return nil
	})

	if err := g.Wait(); err != nil {
		return attendance.StatsResponse{}, err
	}

	stats := attendance.Stats{
		SignedUp:         byStatus[attendance.StatusSignedUp],
		CheckedIn:        byStatus[attendance.StatusCheckedIn],
		Absent:           byStatus[attendance.StatusAbsent],
		Cancelled:        byStatus[attendance.StatusCancelled],
		ProxyCount:       proxy,
		OfflineSyncCount: offline,
	}
	stats.Total = stats.SignedUp + stats.CheckedIn + stats.Absent + stats.Cancelled

	return attendance.StatsResponse{
		Total:            stats.Total,
		SignedUp:         stats.SignedUp,
		CheckedIn:        stats.CheckedIn,
		Absent:           stats.Absent,
		Cancelled:        stats.Cancelled,
		ProxyCount:       stats.ProxyCount,
		OfflineSyncCount: stats.OfflineSyncCount,
		CheckinRate:      checkinRate(stats.CheckedIn, stats.Total-stats.Cancelled),
	}, nil
}

// GetBaseStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetBaseStats(ctx context.Context, filter attendance.StatsFilter) ([]attendance.BaseStatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	responses := make([]attendance.BaseStatsResponse, 0)

	scope, ok, err := s.narrowScope(ctx, filter.BaseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return responses, nil
	}

	rows, err := s.SignupRepository.StatsByBase(ctx, filter, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get base stats: %w", err)
	}

	for _, r := range rows {
		responses = append(responses, attendance.BaseStatsResponse{
			BaseID:      r.BaseID,
			BaseName:    r.BaseName,
			Total:       r.Total,
			CheckedIn:   r.CheckedIn,
			Absent:      r.Absent,
			CheckinRate: checkinRate(r.CheckedIn, r.Total),
		})
	}
	return responses, nil
}

// narrowScope resolves the caller's scope restricted to an optional base filter.
// ok is false when nothing is visible, which callers answer with an empty result.
func (s *AttendanceServiceImpl) narrowScope(ctx context.Context, baseID *string) (user.Scope, bool, error) {
	scope, err := s.scope.Resolve(ctx)
	if err != nil {
		return user.Scope{}, false, err
	}
	narrowed, ok := scope.Narrow(baseID)
	return narrowed, ok, nil
}

// checkinRate is a percentage rounded to two decimals.
func checkinRate(checkedIn, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(checkedIn)/float64(total)*10000) / 100
}
