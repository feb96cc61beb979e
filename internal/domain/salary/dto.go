package salary

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxImageSize bounds signature and voucher uploads.
const MaxImageSize = 10 << 20

// MaxPieceCount bounds piece_count for one day of piecework.
const MaxPieceCount = 1_000_000

// ========================================
// SALARY DRAFT
// ========================================

type DraftSalaryRequest struct {
	SignupID     string  `json:"signup_id"`
	WorkDuration *string `json:"work_duration,omitempty"` // hours, decimal
	PieceCount   *int    `json:"piece_count,omitempty"`
	PayoutType   *string `json:"payout_type,omitempty"`
}

func (r *DraftSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SignupID) {
		errs.Add("signup_id", "signup_id is required")
	} else if !validator.IsValidUUID(r.SignupID) {
		errs.Add("signup_id", "signup_id must be a valid UUID")
	}

	if r.WorkDuration != nil {
		d, ok := validator.IsNonNegativeDecimal(*r.WorkDuration)
		if !ok {
			errs.Add("work_duration", "work_duration must be a non-negative number of hours")
		} else if d.GreaterThan(decimal.NewFromInt(24)) {
			errs.Add("work_duration", "work_duration must not exceed 24 hours")
		} else if !d.Equal(d.Truncate(2)) {
			errs.Add("work_duration", "work_duration must have at most 2 decimal places")
		}
	}

	if r.PieceCount != nil {
		if *r.PieceCount < 0 {
			errs.Add("piece_count", "piece_count must not be negative")
		} else if *r.PieceCount > MaxPieceCount {
			errs.Add("piece_count", fmt.Sprintf("piece_count must not exceed %d", MaxPieceCount))
		}
	}

	if r.PayoutType != nil && !PayoutType(*r.PayoutType).IsValid() {
		errs.Add("payout_type", "payout_type must be one of: CASH, TRANSFER")
	}

	return errs.Err()
}

// Duration returns the parsed work duration, zero when absent.
func (r *DraftSalaryRequest) Duration() decimal.Decimal {
	if r.WorkDuration == nil {
		return decimal.Zero
	}
	d, _ := validator.IsNonNegativeDecimal(*r.WorkDuration)
	return d
}

// Count returns the piece count, zero when absent.
func (r *DraftSalaryRequest) Count() int {
	if r.PieceCount == nil {
		return 0
	}
	return *r.PieceCount
}

// Payout returns the requested payout type, CASH by default.
func (r *DraftSalaryRequest) Payout() PayoutType {
	if r.PayoutType == nil {
		return PayoutCash
	}
	return PayoutType(*r.PayoutType)
}

type SalaryResponse struct {
	ID                string `json:"id"`
	SignupID          string `json:"signup_id"`
	WorkDuration      string `json:"work_duration"`
	PieceCount        int    `json:"piece_count"`
	UnitPriceSnapshot string `json:"unit_price_snapshot"`
	PayType           string `json:"pay_type"`
	TotalAmount       string `json:"total_amount"`
	Status            string `json:"status"`
	PayoutType        string `json:"payout_type"`
	AdminID           string `json:"admin_id"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// ========================================
// PAYMENT
// ========================================

type CreatePaymentRequest struct {
	SalaryID string `json:"salary_id"`
}

func (r *CreatePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SalaryID) {
		errs.Add("salary_id", "salary_id is required")
	} else if !validator.IsValidUUID(r.SalaryID) {
		errs.Add("salary_id", "salary_id must be a valid UUID")
	}

	return errs.Err()
}

// ConfirmPaymentRequest carries the worker's signature image.
type ConfirmPaymentRequest struct {
	ID         string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *ConfirmPaymentRequest) Validate() error {
	return validateImageUpload(r.ID, r.FileHeader, "signature")
}

// CompletePaymentRequest carries the payout voucher image.
type CompletePaymentRequest struct {
	ID         string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CompletePaymentRequest) Validate() error {
	return validateImageUpload(r.ID, r.FileHeader, "voucher")
}

func validateImageUpload(id string, header *multipart.FileHeader, field string) error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(id) {
		errs.Add("id", "id must be a valid UUID")
	}

	if header == nil {
		errs.Add(field, field+" image is required")
		return errs.Err()
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		errs.Add(field, "invalid file type: only jpg, jpeg, png allowed")
	} else if header.Size > MaxImageSize {
		errs.Add(field, field+" image size must not exceed 10MB")
	}

	return errs.Err()
}

type PaymentResponse struct {
	ID           string  `json:"id"`
	SalaryID     string  `json:"salary_id"`
	Amount       string  `json:"amount"`
	PayoutType   string  `json:"payout_type"`
	Status       string  `json:"status"`
	SignatureURL *string `json:"signature_url,omitempty"`
	VoucherURL   *string `json:"voucher_url,omitempty"`
	PaidAt       *string `json:"paid_at,omitempty"`
	PaidBy       *string `json:"paid_by,omitempty"`
	CreatedBy    string  `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
