package worker

import (
	"strings"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
)

type CreateWorkerRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	IDNumber string  `json:"id_number"`
	Email    *string `json:"email,omitempty"`
}

func (r *CreateWorkerRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	} else if len([]rune(r.Name)) > 50 {
		errs.Add("name", "name must not exceed 50 characters")
	}

	if validator.IsEmpty(r.Phone) {
		errs.Add("phone", "phone is required")
	} else if !validator.IsValidPhoneNumber(r.Phone) {
		errs.Add("phone", "invalid phone number format")
	} else {
		r.Phone = validator.NormalizePhone(r.Phone)
	}

	r.IDNumber = strings.ToUpper(strings.TrimSpace(r.IDNumber))
	if r.IDNumber == "" {
		errs.Add("id_number", "id_number is required")
	} else if !validator.IsValidIDNumber(r.IDNumber) {
		errs.Add("id_number", "id_number must be 18 characters")
	}

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "invalid email format")
	}

	return errs.Err()
}

type WorkerResponse struct {
	ID        string  `json:"id"`
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	IDNumber  string  `json:"id_number"`
	Email     *string `json:"email,omitempty"`
	CreatedAt string  `json:"created_at"`
}
