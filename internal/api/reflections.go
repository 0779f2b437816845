package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/okrtrack/internal/okrservice"
)

// ListReflections handles GET /api/periods/{id}/reflections.
func (h *Handler) ListReflections(w http.ResponseWriter, r *http.Request) {
	refs, err := h.svc.ListReflections(r.Context(), idParam(r))
	if err != nil {
		writeServiceError(w, "list reflections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reflections": refs})
}

// SaveReflection handles POST /api/periods/{id}/reflections.
//
//	@Summary		Write the reflection for a week
//	@Description	Stored as Markdown with YAML frontmatter in the journal directory.
//	@Tags			reflections
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Period ID"
//	@Param			body	body		ReflectionRequest	true	"Reflection"
//	@Success		200		{object}	okrservice.ReflectionDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/periods/{id}/reflections [post]
func (h *Handler) SaveReflection(w http.ResponseWriter, r *http.Request) {
	var req ReflectionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	detail, err := h.svc.SaveReflection(r.Context(), idParam(r), okrservice.ReflectionInput{
		Week:       req.Week,
		Title:      req.Title,
		Confidence: req.Confidence,
		Tags:       req.Tags,
		Body:       req.Body,
	})
	if err != nil {
		writeServiceError(w, "save reflection", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetReflection handles GET /api/periods/{id}/reflections/{week}.
func (h *Handler) GetReflection(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("week must be a positive integer"))
		return
	}
	detail, err := h.svc.GetReflection(r.Context(), idParam(r), week)
	if err != nil {
		writeServiceError(w, "get reflection", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
