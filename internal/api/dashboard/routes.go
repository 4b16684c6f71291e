package dashboard

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers dashboard routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.GetDashboard)
		r.Post("/events", h.PostEvent)
	})
	r.Get("/projects", h.ListProjects)
	r.Delete("/workspace", h.DropWorkspace)
}
