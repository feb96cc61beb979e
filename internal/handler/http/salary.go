package http

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/salary"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
)

type SalaryHandler interface {
	Draft(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	CreatePayment(w http.ResponseWriter, r *http.Request)
	ConfirmPayment(w http.ResponseWriter, r *http.Request)
	CompletePayment(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService  salary.SalaryService
	paymentService salary.PaymentService
}

func NewSalaryHandler(salaryService salary.SalaryService, paymentService salary.PaymentService) SalaryHandler {
	return &salaryHandlerImpl{
		salaryService:  salaryService,
		paymentService: paymentService,
	}
}

// Draft implements SalaryHandler.
func (h *salaryHandlerImpl) Draft(w http.ResponseWriter, r *http.Request) {
	var req salary.DraftSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.CalculateAndDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary drafted", result)
}

// Get implements SalaryHandler.
func (h *salaryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Confirm implements SalaryHandler.
func (h *salaryHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.ConfirmSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary confirmed", result)
}

// CreatePayment implements SalaryHandler.
func (h *salaryHandlerImpl) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req salary.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paymentService.CreatePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment created", result)
}

// ConfirmPayment implements SalaryHandler.
func (h *salaryHandlerImpl) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formImage(w, r, "Signature image is required")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.paymentService.ConfirmPayment(r.Context(), salary.ConfirmPaymentRequest{
		ID:         chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment confirmed", result)
}

// CompletePayment implements SalaryHandler.
func (h *salaryHandlerImpl) CompletePayment(w http.ResponseWriter, r *http.Request) {
	file, header, ok := formImage(w, r, "Voucher image is required")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.paymentService.CompletePayment(r.Context(), salary.CompletePaymentRequest{
		ID:         chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment completed", result)
}

// formImage reads the "file" part of a multipart upload (max 10MB).
// It writes the error response itself and reports false on failure.
func formImage(w http.ResponseWriter, r *http.Request, missingMsg string) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, missingMsg, nil)
			return nil, nil, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return nil, nil, false
	}

	return file, header, true
}
