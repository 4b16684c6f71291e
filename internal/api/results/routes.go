package results

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers results pipeline routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/results", func(r chi.Router) {
		r.Get("/", h.GetResults)
		r.Post("/restart", h.Restart)
		r.Get("/export", h.Export)
	})
}
