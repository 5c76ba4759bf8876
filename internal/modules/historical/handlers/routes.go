package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all performance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/performance", h.HandlePerformance)
}
