package stream

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the websocket stream
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/ws", h.Serve)
}
