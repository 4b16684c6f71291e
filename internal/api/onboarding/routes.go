package onboarding

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers onboarding wizard routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/flow", h.ChooseFlow)
		r.Put("/fields", h.UpdateFields)
		r.Post("/next", h.Next)
		r.Post("/back", h.Back)
		r.Post("/ideas/{index}", h.SelectIdea)
	})
}
