package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/sse"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	IssueToken(w http.ResponseWriter, r *http.Request)
	TokenImage(w http.ResponseWriter, r *http.Request)
	SignUp(w http.ResponseWriter, r *http.Request)
	CancelSignup(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	ExportRecords(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	BaseStats(w http.ResponseWriter, r *http.Request)
	Live(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	scope             user.ScopeResolver
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, scope user.ScopeResolver, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		scope:             scope,
		hub:               hub,
	}
}

// IssueToken implements AttendanceHandler.
// Admins may pass ?worker_id= to issue on a worker's behalf.
func (h *attendanceHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.IssueToken(r.Context(), r.URL.Query().Get("worker_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TokenImage implements AttendanceHandler.
func (h *attendanceHandlerImpl) TokenImage(w http.ResponseWriter, r *http.Request) {
	png, err := h.attendanceService.RenderTokenPNG(r.Context(), r.URL.Query().Get("worker_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.Attachment(w, "image/png", "", png)
}

// SignUp implements AttendanceHandler.
func (h *attendanceHandlerImpl) SignUp(w http.ResponseWriter, r *http.Request) {
	var req attendance.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.SignUp(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Signed up successfully", result)
}

// CancelSignup implements AttendanceHandler.
func (h *attendanceHandlerImpl) CancelSignup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Signup ID is required", nil)
		return
	}

	result, err := h.attendanceService.CancelSignup(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signup cancelled", result)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, changed, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !changed {
		response.SuccessWithMessage(w, "Already checked in", result)
		return
	}
	h.hub.Publish(result.BaseID, sse.Event{Event: "checkin", Data: result})

	response.SuccessWithMessage(w, "Check-in successful", result)
}

// Sync implements AttendanceHandler.
func (h *attendanceHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	var req attendance.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode sync batch", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.SyncOfflineRecords(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	for _, res := range result.Results {
		if res.Status == attendance.SyncSuccess && res.Index < len(req.Records) {
			h.hub.Publish(req.Records[res.Index].BaseID, sse.Event{Event: "offline_sync", Data: res})
		}
	}

	response.Success(w, result)
}

// ListRecords implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := parseRecordFilter(r)

	result, err := h.attendanceService.GetRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportRecords implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportRecords(w http.ResponseWriter, r *http.Request) {
	filter := parseRecordFilter(r)

	buf, filename, err := h.attendanceService.ExportRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, xlsxContentType, filename, buf.Bytes())
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetStats(r.Context(), parseStatsFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BaseStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) BaseStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetBaseStats(r.Context(), parseStatsFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Live streams check-ins at one base as server-sent events.
func (h *attendanceHandlerImpl) Live(w http.ResponseWriter, r *http.Request) {
	baseID := r.URL.Query().Get("base_id")
	if baseID == "" {
		response.BadRequest(w, "Query parameter 'base_id' is required", nil)
		return
	}

	scope, err := h.scope.Resolve(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !scope.Allows(baseID) {
		response.HandleError(w, user.ErrBaseAccessDenied)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(baseID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"base_id\":%q}\n\n", baseID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode live event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func parseRecordFilter(r *http.Request) attendance.RecordFilter {
	q := r.URL.Query()
	filter := attendance.RecordFilter{
		BaseID:    queryPtr(r, "base_id"),
		WorkerID:  queryPtr(r, "worker_id"),
		JobID:     queryPtr(r, "job_id"),
		Status:    queryPtr(r, "status"),
		Date:      queryPtr(r, "date"),
		StartDate: queryPtr(r, "start_date"),
		EndDate:   queryPtr(r, "end_date"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if v := q.Get("is_proxy"); v != "" {
		if isProxy, err := strconv.ParseBool(v); err == nil {
			filter.IsProxy = &isProxy
		}
	}

	// Pagination
	page := 1
	if p := q.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := q.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	return filter
}

func parseStatsFilter(r *http.Request) attendance.StatsFilter {
	return attendance.StatsFilter{
		BaseID:    queryPtr(r, "base_id"),
		Date:      queryPtr(r, "date"),
		StartDate: queryPtr(r, "start_date"),
		EndDate:   queryPtr(r, "end_date"),
	}
}

func queryPtr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
