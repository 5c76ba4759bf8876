package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetSnapshot)
		r.Get("/holdings", h.HandleListHoldings)
		r.Post("/holdings", h.HandleSaveHolding)
		r.Delete("/holdings/{symbol}", h.HandleRemoveHolding)
	})
}
