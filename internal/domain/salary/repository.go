package salary

import (
	"context"
	"time"
)

type SalaryRepository interface {
	// GetByID returns ErrSalaryNotFound when missing
	GetByID(ctx context.Context, id string) (SalaryDraft, error)

	// GetBySignupID returns nil when the record has no draft yet
	GetBySignupID(ctx context.Context, signupID string) (*SalaryDraft, error)

	// Upsert inserts or replaces the draft keyed by signup id
	Upsert(ctx context.Context, draft SalaryDraft) (SalaryDraft, error)

	UpdateStatus(ctx context.Context, id string, status SalaryStatus) (SalaryDraft, error)
}

type PaymentRepository interface {
	// Create returns ErrPaymentExists when the draft already has a payment
	Create(ctx context.Context, payment Payment) (Payment, error)

	// GetByID returns ErrPaymentNotFound when missing
	GetByID(ctx context.Context, id string) (Payment, error)

	MarkConfirmed(ctx context.Context, id string, signatureURL string) (Payment, error)

	// Complete marks the payment and its salary draft PAID in one transaction
	Complete(ctx context.Context, id string, voucherURL string, paidBy string, paidAt time.Time) (Payment, error)
}
