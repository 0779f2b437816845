package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/okrtrack/internal/okrservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *okrservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.ListPeriods)
		r.Post("/", h.CreatePeriod)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPeriod)
			r.Put("/", h.UpdatePeriod)
			r.Delete("/", h.DeletePeriod)
			r.Post("/activate", h.ActivatePeriod)
			r.Get("/context", h.PeriodContext)
			r.Get("/objectives", h.ListObjectives)
			r.Post("/objectives", h.CreateObjective)
			r.Get("/reflections", h.ListReflections)
			r.Post("/reflections", h.SaveReflection)
			r.Get("/reflections/{week}", h.GetReflection)
		})
	})

	r.Route("/objectives/{id}", func(r chi.Router) {
		r.Get("/", h.GetObjective)
		r.Put("/", h.UpdateObjective)
		r.Delete("/", h.DeleteObjective)
		r.Post("/key-results", h.CreateKeyResult)
	})

	r.Route("/key-results/{id}", func(r chi.Router) {
		r.Get("/", h.GetKeyResult)
		r.Put("/", h.UpdateKeyResult)
		r.Delete("/", h.DeleteKeyResult)
		r.Get("/targets", h.KeyResultTargets)
		r.Get("/series", h.KeyResultSeries)
		r.Post("/progress", h.RecordProgress)
	})

	r.Get("/dashboard", h.Dashboard)
	r.Get("/search", h.Search)

	r.Get("/settings/clock", h.GetClock)
	r.Put("/settings/clock", h.SetClock)
	r.Delete("/settings/clock", h.ClearClock)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
