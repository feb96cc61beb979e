package attendance

import "errors"

// Attendance domain errors
var (
	// Sign-up errors
	ErrAlreadySignedUp = errors.New("worker has already signed up for this base on this date")
	ErrTooManyProxies  = errors.New("a worker may sign up at most 2 others per base and day")
	ErrInvalidProxy    = errors.New("proxy workers must be distinct and differ from the sponsor")
	ErrWorkDateInPast  = errors.New("work date must not be in the past")
	ErrCannotCancel    = errors.New("only signed-up records can be cancelled")

	// Check-in errors
	ErrNotSignedUpToday = errors.New("worker has not signed up at this base today")
	ErrNoSignupRecord   = errors.New("no signup record")

	// General errors
	ErrSignupNotFound = errors.New("signup record not found")
	ErrStatusChanged  = errors.New("signup record status changed concurrently")
	ErrExportFailed   = errors.New("failed to generate export file")
)
