package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all watchlist routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Delete("/{symbol}", h.HandleRemove)
	})
}
