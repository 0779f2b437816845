package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/okrtrack/internal/okrservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *okrservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *okrservice.Service) *Handler {
	return &Handler{svc: svc}
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListPeriods handles GET /api/periods.
//
//	@Summary		List all periods, most recent first
//	@Tags			periods
//	@Produce		json
//	@Success		200	{array}	models.Period
//	@Security		BearerAuth
//	@Router			/periods [get]
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.svc.ListPeriods(r.Context())
	if err != nil {
		writeServiceError(w, "list periods", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": periods})
}

// CreatePeriod handles POST /api/periods.
//
//	@Summary		Create a period
//	@Tags			periods
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PeriodRequest	true	"Period to create"
//	@Success		201		{object}	models.Period
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periods [post]
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	p, err := h.svc.CreatePeriod(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, "create period", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPeriod handles GET /api/periods/{id}.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPeriod(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "get period", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePeriod handles PUT /api/periods/{id}.
func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	p, err := h.svc.UpdatePeriod(r.Context(), idParam(r), req.input())
	if err != nil {
		writeServiceError(w, "update period", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePeriod handles DELETE /api/periods/{id}.
func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePeriod(r.Context(), idParam(r)); err != nil {
		writeServiceError(w, "delete period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivatePeriod handles POST /api/periods/{id}/activate.
//
//	@Summary		Make a period the only active one
//	@Tags			periods
//	@Produce		json
//	@Param			id	path		string	true	"Period ID"
//	@Success		200	{object}	models.Period
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periods/{id}/activate [post]
func (h *Handler) ActivatePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ActivatePeriod(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "activate period", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PeriodContext handles GET /api/periods/{id}/context.
//
//	@Summary		Week math for a period at the current date
//	@Tags			periods
//	@Produce		json
//	@Param			id	path		string	true	"Period ID"
//	@Success		200	{object}	okr.PeriodContext
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periods/{id}/context [get]
func (h *Handler) PeriodContext(w http.ResponseWriter, r *http.Request) {
	pc, err := h.svc.PeriodContext(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "period context", err)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Status overview of the active period
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	okrservice.Dashboard
//	@Failure		404	{object}	errResponse	"No active period"
//	@Security		BearerAuth
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across objectives, key results and reflections
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetClock handles GET /api/settings/clock.
func (h *Handler) GetClock(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ClockState(r.Context())
	if err != nil {
		writeServiceError(w, "clock state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SetClock handles PUT /api/settings/clock.
//
//	@Summary		Pretend today is another date
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClockRequest	true	"Date or day offset"
//	@Success		200		{object}	okrservice.ClockState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/clock [put]
func (h *Handler) SetClock(w http.ResponseWriter, r *http.Request) {
	var req ClockRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	st, err := h.svc.SetClockOverride(r.Context(), req.override())
	if err != nil {
		writeServiceError(w, "set clock", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ClearClock handles DELETE /api/settings/clock.
func (h *Handler) ClearClock(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.ClearClockOverride(r.Context())
	if err != nil {
		writeServiceError(w, "clear clock", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
