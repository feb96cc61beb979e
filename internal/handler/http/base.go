package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
)

type BaseHandler interface {
	CreateBase(w http.ResponseWriter, r *http.Request)
	ListBases(w http.ResponseWriter, r *http.Request)
	CreateJob(w http.ResponseWriter, r *http.Request)
	UpdateJob(w http.ResponseWriter, r *http.Request)
	ListJobs(w http.ResponseWriter, r *http.Request)
}

type baseHandlerImpl struct {
	baseService base.BaseService
}

func NewBaseHandler(baseService base.BaseService) BaseHandler {
	return &baseHandlerImpl{baseService: baseService}
}

// CreateBase implements BaseHandler.
func (h *baseHandlerImpl) CreateBase(w http.ResponseWriter, r *http.Request) {
	var req base.CreateBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.baseService.CreateBase(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Base created", result)
}

// ListBases implements BaseHandler.
func (h *baseHandlerImpl) ListBases(w http.ResponseWriter, r *http.Request) {
	result, err := h.baseService.ListBases(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateJob implements BaseHandler.
func (h *baseHandlerImpl) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req base.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.BaseID = chi.URLParam(r, "id")

	result, err := h.baseService.CreateJob(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Job created", result)
}

// UpdateJob implements BaseHandler.
func (h *baseHandlerImpl) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req base.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.baseService.UpdateJob(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Job updated", result)
}

// ListJobs implements BaseHandler.
func (h *baseHandlerImpl) ListJobs(w http.ResponseWriter, r *http.Request) {
	result, err := h.baseService.ListJobs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
