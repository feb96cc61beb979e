package notification

import (
	"context"
	"time"
)

// SignupConfirmation is what a worker receives after signing up.
type SignupConfirmation struct {
	Phone     string
	QRContent string
	BaseName  string
	WorkDate  time.Time
}

// Sender delivers worker-facing messages. sent is false when delivery was skipped.
type Sender interface {
	SendSignupConfirmation(ctx context.Context, msg SignupConfirmation) (sent bool, err error)
}
