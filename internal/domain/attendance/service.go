package attendance

import (
	"bytes"
	"context"
)

// AttendanceService covers QR identity, sign-up, check-in and the record views
type AttendanceService interface {
	// IssueToken returns a fresh QR identity token for a worker
	IssueToken(ctx context.Context, workerID string) (QRTokenResponse, error)

	// RenderTokenPNG returns the same token rendered as a PNG image
	RenderTokenPNG(ctx context.Context, workerID string) ([]byte, error)

	// SignUp registers a worker (and optional proxies) for a base and date
	SignUp(ctx context.Context, req SignUpRequest) (SignUpResponse, error)

	// CancelSignup cancels a SIGNED_UP record
	CancelSignup(ctx context.Context, id string) (SignupResponse, error)

	// CheckIn verifies a scanned token and checks the worker in at a base.
	// The bool is false when the worker was already checked in.
	CheckIn(ctx context.Context, req CheckInRequest) (SignupResponse, bool, error)

	// SyncOfflineRecords replays check-ins captured while the scanner was offline
	SyncOfflineRecords(ctx context.Context, req SyncRequest) (SyncResponse, error)

	GetRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)
	GetStats(ctx context.Context, filter StatsFilter) (StatsResponse, error)
	GetBaseStats(ctx context.Context, filter StatsFilter) ([]BaseStatsResponse, error)

	// ExportRecords renders the filtered records as an xlsx workbook
	ExportRecords(ctx context.Context, filter RecordFilter) (*bytes.Buffer, string, error)

	// MarkAbsent closes out SIGNED_UP records of past days
	MarkAbsent(ctx context.Context) (int64, error)
}
