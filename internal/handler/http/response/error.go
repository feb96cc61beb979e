package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/qrtoken"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/harvestlink/harvest-backend-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity and scope
	case errors.Is(err, user.ErrMissingClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrBaseAccessDenied),
		errors.Is(err, user.ErrWorkerIdentityRequired):
		Forbidden(w, err.Error())

	// QR tokens
	case errors.Is(err, qrtoken.ErrInvalidToken),
		errors.Is(err, qrtoken.ErrMalformedToken),
		errors.Is(err, qrtoken.ErrExpiredToken):
		BadRequest(w, err.Error(), nil)

	// Registry
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, worker.ErrPhoneExists):
		Conflict(w, "Phone number already registered")
	case errors.Is(err, worker.ErrIDNumberExists):
		Conflict(w, "ID number already registered")
	case errors.Is(err, base.ErrBaseNotFound):
		NotFound(w, "Base not found")
	case errors.Is(err, base.ErrJobNotFound):
		NotFound(w, "Job not found")
	case errors.Is(err, base.ErrJobClosed):
		BadRequest(w, "Job is closed", nil)

	// Attendance
	case errors.Is(err, attendance.ErrAlreadySignedUp):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrTooManyProxies),
		errors.Is(err, attendance.ErrInvalidProxy),
		errors.Is(err, attendance.ErrWorkDateInPast),
		errors.Is(err, attendance.ErrNotSignedUpToday):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrCannotCancel),
		errors.Is(err, attendance.ErrStatusChanged):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrSignupNotFound),
		errors.Is(err, attendance.ErrNoSignupRecord):
		NotFound(w, "Signup record not found")

	// Salary and payment
	case errors.Is(err, salary.ErrSalaryNotFound):
		NotFound(w, "Salary draft not found")
	case errors.Is(err, salary.ErrPaymentNotFound):
		NotFound(w, "Payment not found")
	case errors.Is(err, salary.ErrSignupNotCheckedIn),
		errors.Is(err, salary.ErrSalaryNotConfirmed):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, salary.ErrSalaryLocked),
		errors.Is(err, salary.ErrSalaryNotPending),
		errors.Is(err, salary.ErrPaymentExists),
		errors.Is(err, salary.ErrPaymentNotPending),
		errors.Is(err, salary.ErrPaymentNotConfirmed):
		Conflict(w, err.Error())
	case errors.Is(err, file.ErrUnsupportedImage):
		BadRequest(w, err.Error(), nil)

	// Export failures and unknown pay types are server faults
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
