package oplog

import (
	"context"
	"time"
)

type OperationType string

const (
	OpSignup          OperationType = "SIGNUP"
	OpSignupCancel    OperationType = "SIGNUP_CANCEL"
	OpCheckin         OperationType = "CHECKIN"
	OpCheckinFailed   OperationType = "CHECKIN_FAILED"
	OpOfflineSync     OperationType = "OFFLINE_SYNC"
	OpSalaryDraft     OperationType = "SALARY_DRAFT"
	OpSalaryConfirm   OperationType = "SALARY_CONFIRM"
	OpPaymentCreate   OperationType = "PAYMENT_CREATE"
	OpPaymentConfirm  OperationType = "PAYMENT_CONFIRM"
	OpPaymentComplete OperationType = "PAYMENT_COMPLETE"
	OpWorkerRegister  OperationType = "WORKER_REGISTER"
)

// Entry is one audit line. Before and After are marshalled to JSONB.
type Entry struct {
	ID           string
	Operation    OperationType
	ResourceType string
	ResourceID   *string
	UserID       *string
	Description  string
	Before       any
	After        any
	CreatedAt    time.Time
}

type Repository interface {
	Insert(ctx context.Context, entry Entry) error
}

// Logger records operations. Failures never reach the caller.
type Logger interface {
	Log(ctx context.Context, entry Entry)
}
