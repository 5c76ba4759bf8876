package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Get("/{symbol}", h.HandleGetScore)
	})
}
