package base

import (
	"strings"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateBaseRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	OwnerID *string `json:"owner_id,omitempty"`
}

func (r *CreateBaseRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	if r.OwnerID != nil && !validator.IsValidUUID(*r.OwnerID) {
		errs.Add("owner_id", "owner_id must be a valid UUID")
	}

	return errs.Err()
}

type BaseResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	OwnerID   *string `json:"owner_id,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type CreateJobRequest struct {
	BaseID    string `json:"-"`
	Title     string `json:"title"`
	PayType   string `json:"pay_type"`
	UnitPrice string `json:"unit_price"`

	unitPrice decimal.Decimal
}

func (r *CreateJobRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.BaseID) {
		errs.Add("base_id", "base_id must be a valid UUID")
	}

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		errs.Add("title", "title is required")
	}

	if !PayType(r.PayType).IsValid() {
		errs.Add("pay_type", "pay_type must be one of: FIXED, HOURLY, PIECEWORK")
	}

	price, ok := validator.IsNonNegativeDecimal(r.UnitPrice)
	if !ok {
		errs.Add("unit_price", "unit_price must be a non-negative decimal")
	}
	r.unitPrice = price

	return errs.Err()
}

// ParsedUnitPrice is valid after Validate succeeded.
func (r *CreateJobRequest) ParsedUnitPrice() decimal.Decimal {
	return r.unitPrice
}

type UpdateJobRequest struct {
	ID        string  `json:"-"`
	Title     *string `json:"title,omitempty"`
	PayType   *string `json:"pay_type,omitempty"`
	UnitPrice *string `json:"unit_price,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (r *UpdateJobRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}

	if r.Title != nil && validator.IsEmpty(*r.Title) {
		errs.Add("title", "title must not be empty")
	}

	if r.PayType != nil && !PayType(*r.PayType).IsValid() {
		errs.Add("pay_type", "pay_type must be one of: FIXED, HOURLY, PIECEWORK")
	}

	if r.UnitPrice != nil {
		if _, ok := validator.IsNonNegativeDecimal(*r.UnitPrice); !ok {
			errs.Add("unit_price", "unit_price must be a non-negative decimal")
		}
	}

	return errs.Err()
}

// Apply copies the set fields onto job.
func (r *UpdateJobRequest) Apply(job *Job) {
	if r.Title != nil {
		job.Title = strings.TrimSpace(*r.Title)
	}
	if r.PayType != nil {
		job.PayType = PayType(*r.PayType)
	}
	if r.UnitPrice != nil {
		if price, ok := validator.IsNonNegativeDecimal(*r.UnitPrice); ok {
			job.UnitPrice = price
		}
	}
	if r.IsActive != nil {
		job.IsActive = *r.IsActive
	}
}

type JobResponse struct {
	ID        string `json:"id"`
	BaseID    string `json:"base_id"`
	Title     string `json:"title"`
	PayType   string `json:"pay_type"`
	UnitPrice string `json:"unit_price"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
