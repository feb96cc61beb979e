package attendance

import (
	"time"
)

type SignupStatus string

const (
	StatusSignedUp  SignupStatus = "SIGNED_UP"
	StatusCheckedIn SignupStatus = "CHECKED_IN"
	StatusAbsent    SignupStatus = "ABSENT"
	StatusCancelled SignupStatus = "CANCELLED"
)

func (s SignupStatus) IsValid() bool {
	switch s {
	case StatusSignedUp, StatusCheckedIn, StatusAbsent, StatusCancelled:
		return true
	}
	return false
}

// MaxProxiesPerSponsor caps how many other workers one worker may sign up per base and day.
const MaxProxiesPerSponsor = 2

// SignupRecord is one worker's registration to work at a base on a date.
// At most one non-cancelled record exists per (WorkerID, BaseID, WorkDate).
type SignupRecord struct {
	ID             string
	WorkerID       string
	BaseID         string
	JobID          string
	WorkDate       time.Time
	Status         SignupStatus
	CheckinTime    *time.Time
	IsProxy        bool
	ProxySponsorID *string
	IsOfflineSync  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined
	WorkerName *string
	BaseName   *string
	JobTitle   *string
}

func (r *SignupRecord) IsCheckedIn() bool {
	return r.Status == StatusCheckedIn
}

// MarkCheckedIn moves the record to CHECKED_IN. checkinTime is only ever set together with that status.
func (r *SignupRecord) MarkCheckedIn(at time.Time, offline bool) {
	t := at.UTC()
	r.Status = StatusCheckedIn
	r.CheckinTime = &t
	r.IsOfflineSync = offline
}

type Stats struct {
	Total            int64
	SignedUp         int64
	CheckedIn        int64
	Absent           int64
	Cancelled        int64
	ProxyCount       int64
	OfflineSyncCount int64
}

type BaseStats struct {
	BaseID    string
	BaseName  string
	Total     int64
	CheckedIn int64
	Absent    int64
}
