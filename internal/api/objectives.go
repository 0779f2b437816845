package api

import (
	"net/http"

	"github.com/starford/okrtrack/internal/okrservice"
)

// ListObjectives handles GET /api/periods/{id}/objectives.
func (h *Handler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	objs, err := h.svc.ListObjectives(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "list objectives", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"objectives": objs})
}

// CreateObjective handles POST /api/periods/{id}/objectives.
func (h *Handler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	var req ObjectiveRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	o, err := h.svc.CreateObjective(r.Context(), idParam(r), okrservice.ObjectiveInput{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		writeServiceError(w, "create objective", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// GetObjective handles GET /api/objectives/{id}.
func (h *Handler) GetObjective(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetObjective(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "get objective", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateObjective handles PUT /api/objectives/{id}.
func (h *Handler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	var req ObjectiveRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	o, err := h.svc.UpdateObjective(r.Context(), idParam(r), okrservice.ObjectiveInput{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		writeServiceError(w, "update objective", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// DeleteObjective handles DELETE /api/objectives/{id}.
func (h *Handler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteObjective(r.Context(), idParam(r)); err != nil {
		writeServiceError(w, "delete objective", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateKeyResult handles POST /api/objectives/{id}/key-results.
//
//	@Summary		Add a key result to an objective
//	@Tags			key-results
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Objective ID"
//	@Param			body	body		KeyResultRequest	true	"Key result to create"
//	@Success		201		{object}	models.KeyResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/objectives/{id}/key-results [post]
func (h *Handler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	var req KeyResultRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	kr, err := h.svc.CreateKeyResult(r.Context(), idParam(r), okrservice.KeyResultInput{
		Title:         req.Title,
		TargetValue:   req.TargetValue,
		Unit:          req.Unit,
		TargetMode:    req.TargetMode,
		WeeklyTargets: req.WeeklyTargets,
	})
	if err != nil {
		writeServiceError(w, "create key result", err)
		return
	}
	writeJSON(w, http.StatusCreated, kr)
}

// GetKeyResult handles GET /api/key-results/{id}.
func (h *Handler) GetKeyResult(w http.ResponseWriter, r *http.Request) {
	kr, err := h.svc.GetKeyResult(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "get key result", err)
		return
	}
	writeJSON(w, http.StatusOK, kr)
}

// UpdateKeyResult handles PUT /api/key-results/{id}.
//
//	@Summary		Update a key result
//	@Description	Switching to manual without weekly targets starts from a linear ramp.
//	@Description	Changing the target of a manual key result rescales its curve.
//	@Tags			key-results
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Key result ID"
//	@Param			body	body		KeyResultPatchRequest	true	"Fields to change"
//	@Success		200		{object}	models.KeyResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/key-results/{id} [put]
func (h *Handler) UpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	var req KeyResultPatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	kr, err := h.svc.UpdateKeyResult(r.Context(), idParam(r), okrservice.KeyResultPatch{
		Title:         req.Title,
		TargetValue:   req.TargetValue,
		Unit:          req.Unit,
		TargetMode:    req.TargetMode,
		WeeklyTargets: req.WeeklyTargets,
	})
	if err != nil {
		writeServiceError(w, "update key result", err)
		return
	}
	writeJSON(w, http.StatusOK, kr)
}

// DeleteKeyResult handles DELETE /api/key-results/{id}.
func (h *Handler) DeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteKeyResult(r.Context(), idParam(r)); err != nil {
		writeServiceError(w, "delete key result", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KeyResultTargets handles GET /api/key-results/{id}/targets.
func (h *Handler) KeyResultTargets(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.KeyResultTargets(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "key result targets", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// KeyResultSeries handles GET /api/key-results/{id}/series.
//
//	@Summary		Expected vs. actual progress per week
//	@Tags			key-results
//	@Produce		json
//	@Param			id	path		string	true	"Key result ID"
//	@Success		200	{object}	okrservice.Series
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/key-results/{id}/series [get]
func (h *Handler) KeyResultSeries(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.KeyResultSeries(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "key result series", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// RecordProgress handles POST /api/key-results/{id}/progress.
//
//	@Summary		Record a weekly check-in
//	@Tags			key-results
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Key result ID"
//	@Param			body	body		ProgressRequest	true	"Cumulative value and optional week"
//	@Success		201		{object}	models.WeeklyProgress
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/key-results/{id}/progress [post]
func (h *Handler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordProgress(r.Context(), idParam(r), req.input())
	if err != nil {
		writeServiceError(w, "record progress", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
