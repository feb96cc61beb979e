package salary

import (
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/shopspring/decimal"
)

// SalaryStatus enum
type SalaryStatus string

const (
	SalaryStatusPending   SalaryStatus = "PENDING"
	SalaryStatusConfirmed SalaryStatus = "CONFIRMED"
	SalaryStatusPaid      SalaryStatus = "PAID"
)

// PayoutType enum
type PayoutType string

const (
	PayoutCash     PayoutType = "CASH"
	PayoutTransfer PayoutType = "TRANSFER"
)

func (p PayoutType) IsValid() bool {
	return p == PayoutCash || p == PayoutTransfer
}

// SalaryDraft is the computed pay for one checked-in signup record.
// TotalAmount always equals Calculate(PayType, UnitPriceSnapshot, WorkDuration, PieceCount).
type SalaryDraft struct {
	ID                string
	SignupID          string
	WorkDuration      decimal.Decimal
	PieceCount        int
	UnitPriceSnapshot decimal.Decimal
	PayType           base.PayType
	TotalAmount       decimal.Decimal
	Status            SalaryStatus
	PayoutType        PayoutType
	AdminID           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLocked reports whether the draft can no longer be recalculated.
func (d *SalaryDraft) IsLocked() bool {
	return d.Status == SalaryStatusConfirmed || d.Status == SalaryStatusPaid
}

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusPaid      PaymentStatus = "PAID"
)

// Payment records the payout of one confirmed salary draft.
type Payment struct {
	ID           string
	SalaryID     string
	Amount       decimal.Decimal
	PayoutType   PayoutType
	Status       PaymentStatus
	SignatureURL *string
	VoucherURL   *string
	PaidAt       *time.Time
	PaidBy       *string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
