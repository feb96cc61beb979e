package attendance

import (
	"fmt"
	"strings"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

// MaxSyncBatch bounds one offline sync upload.
const MaxSyncBatch = 500

// ========================================
// QR TOKEN
// ========================================

type QRTokenResponse struct {
	Content       string `json:"content"`
	ValidDuration string `json:"valid_duration"`
	ExpiresAt     string `json:"expires_at"`
}

// ========================================
// SIGN-UP
// ========================================

type SignUpRequest struct {
	// WorkerID is taken from the token for workers; admins sign up on a worker's behalf
	WorkerID       string   `json:"worker_id,omitempty"`
	BaseID         string   `json:"base_id"`
	JobID          string   `json:"job_id"`
	WorkDate       *string  `json:"work_date,omitempty"` // YYYY-MM-DD, defaults to today
	ProxyWorkerIDs []string `json:"proxy_worker_ids,omitempty"`
}

func (r *SignUpRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WorkerID != "" && !validator.IsValidUUID(r.WorkerID) {
		errs.Add("worker_id", "worker_id must be a valid UUID")
	}

	if validator.IsEmpty(r.BaseID) {
		errs.Add("base_id", "base_id is required")
	} else if !validator.IsValidUUID(r.BaseID) {
		errs.Add("base_id", "base_id must be a valid UUID")
	}

	if validator.IsEmpty(r.JobID) {
		errs.Add("job_id", "job_id is required")
	} else if !validator.IsValidUUID(r.JobID) {
		errs.Add("job_id", "job_id must be a valid UUID")
	}

	if r.WorkDate != nil && *r.WorkDate != "" {
		if _, valid := validator.IsValidDate(*r.WorkDate); !valid {
			errs.Add("work_date", "work_date must be in YYYY-MM-DD format")
		}
	}

	for i, id := range r.ProxyWorkerIDs {
		if !validator.IsValidUUID(id) {
			errs.Add(fmt.Sprintf("proxy_worker_ids[%d]", i), "must be a valid UUID")
		}
	}

	return errs.Err()
}

type ProxyResultStatus string

const (
	ProxyCreated ProxyResultStatus = "created"
	ProxySkipped ProxyResultStatus = "skipped"
	ProxyFailed  ProxyResultStatus = "failed"
)

type ProxyResult struct {
	WorkerID string            `json:"worker_id"`
	Status   ProxyResultStatus `json:"status"`
	SignupID *string           `json:"signup_id,omitempty"`
	Message  string            `json:"message,omitempty"`
}

type SignUpResponse struct {
	Record       SignupResponse `json:"record"`
	ProxyResults []ProxyResult  `json:"proxy_results"`
}

// ========================================
// CHECK-IN
// ========================================

type CheckInRequest struct {
	QRContent string `json:"qr_content"`
	BaseID    string `json:"base_id"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	r.QRContent = strings.TrimSpace(r.QRContent)
	if r.QRContent == "" {
		errs.Add("qr_content", "qr_content is required")
	}

	if validator.IsEmpty(r.BaseID) {
		errs.Add("base_id", "base_id is required")
	} else if !validator.IsValidUUID(r.BaseID) {
		errs.Add("base_id", "base_id must be a valid UUID")
	}

	return errs.Err()
}

// ========================================
// OFFLINE SYNC
// ========================================

type OfflineRecord struct {
	UID         string  `json:"uid"`
	BaseID      string  `json:"base_id"`
	CheckinTime *string `json:"checkin_time,omitempty"` // RFC3339
	Date        *string `json:"date,omitempty"`         // YYYY-MM-DD
}

type SyncRequest struct {
	Records []OfflineRecord `json:"records"`
}

// Validate only checks the batch; each record is judged on its own during sync.
func (r *SyncRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Records) == 0 {
		errs.Add("records", "records must not be empty")
	} else if len(r.Records) > MaxSyncBatch {
		errs.Add("records", fmt.Sprintf("at most %d records per sync", MaxSyncBatch))
	}

	return errs.Err()
}

type SyncResultStatus string

const (
	SyncSuccess SyncResultStatus = "success"
	SyncSkipped SyncResultStatus = "skipped"
	SyncError   SyncResultStatus = "error"
)

type SyncResult struct {
	Index    int              `json:"index"`
	UID      string           `json:"uid"`
	Status   SyncResultStatus `json:"status"`
	Message  string           `json:"message,omitempty"`
	SignupID *string          `json:"signup_id,omitempty"`
}

type SyncResponse struct {
	Total   int          `json:"total"`
	Results []SyncResult `json:"results"`
}

// ========================================
// RECORDS
// ========================================

type SignupResponse struct {
	ID             string  `json:"id"`
	WorkerID       string  `json:"worker_id"`
	WorkerName     *string `json:"worker_name,omitempty"`
	BaseID         string  `json:"base_id"`
	BaseName       *string `json:"base_name,omitempty"`
	JobID          string  `json:"job_id"`
	JobTitle       *string `json:"job_title,omitempty"`
	WorkDate       string  `json:"work_date"`
	Status         string  `json:"status"`
	CheckinTime    *string `json:"checkin_time,omitempty"`
	IsProxy        bool    `json:"is_proxy"`
	ProxySponsorID *string `json:"proxy_sponsor_id,omitempty"`
	IsOfflineSync  bool    `json:"is_offline_sync"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type RecordFilter struct {
	// Search & Filter
	BaseID    *string `json:"base_id,omitempty"`
	WorkerID  *string `json:"worker_id,omitempty"`
	JobID     *string `json:"job_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	IsProxy   *bool   `json:"is_proxy,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // work_date, checkin_time, created_at, status
	SortOrder string `json:"sort_order"` // asc, desc
}

var recordSortFields = []string{"work_date", "checkin_time", "created_at", "status"}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}

	// Limit validation
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	validateOptionalUUID(&errs, "base_id", f.BaseID)
	validateOptionalUUID(&errs, "worker_id", f.WorkerID)
	validateOptionalUUID(&errs, "job_id", f.JobID)

	if f.Status != nil && !SignupStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: SIGNED_UP, CHECKED_IN, ABSENT, CANCELLED")
	}

	validateOptionalDate(&errs, "date", f.Date)
	validateOptionalDate(&errs, "start_date", f.StartDate)
	validateOptionalDate(&errs, "end_date", f.EndDate)

	// Sort validation
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, recordSortFields) {
			errs.Add("sort_by", "sort_by must be one of: "+strings.Join(recordSortFields, ", "))
		}
	} else {
		f.SortBy = "work_date"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc"
	}

	return errs.Err()
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Showing    string           `json:"showing"`
	Records    []SignupResponse `json:"records"`
}

// ========================================
// STATS
// ========================================

type StatsFilter struct {
	BaseID    *string `json:"base_id,omitempty"`
	Date      *string `json:"date,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	validateOptionalUUID(&errs, "base_id", f.BaseID)
	validateOptionalDate(&errs, "date", f.Date)
	validateOptionalDate(&errs, "start_date", f.StartDate)
	validateOptionalDate(&errs, "end_date", f.EndDate)

	return errs.Err()
}

type StatsResponse struct {
	Total            int64   `json:"total"`
	SignedUp         int64   `json:"signed_up"`
	CheckedIn        int64   `json:"checked_in"`
	Absent           int64   `json:"absent"`
	Cancelled        int64   `json:"cancelled"`
	ProxyCount       int64   `json:"proxy_count"`
	OfflineSyncCount int64   `json:"offline_sync_count"`
	CheckinRate      float64 `json:"checkin_rate"`
}

type BaseStatsResponse struct {
	BaseID      string  `json:"base_id"`
	BaseName    string  `json:"base_name"`
	Total       int64   `json:"total"`
	CheckedIn   int64   `json:"checked_in"`
	Absent      int64   `json:"absent"`
	CheckinRate float64 `json:"checkin_rate"`
}

func validateOptionalUUID(errs *validator.ValidationErrors, field string, v *string) {
	if v != nil && *v != "" && !validator.IsValidUUID(*v) {
		errs.Add(field, field+" must be a valid UUID")
	}
}

func validateOptionalDate(errs *validator.ValidationErrors, field string, v *string) {
	if v != nil && *v != "" {
		if _, valid := validator.IsValidDate(*v); !valid {
			errs.Add(field, field+" must be in YYYY-MM-DD format")
		}
	}
}
