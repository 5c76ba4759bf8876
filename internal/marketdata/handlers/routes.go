package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/quote/{symbol}", h.HandleGetQuote)
		r.Get("/fundamentals/{symbol}", h.HandleGetFundamentals)
		r.Get("/history/{symbol}", h.HandleGetHistory)
		r.Get("/fx/{pair}", h.HandleGetFxRate)
		r.Post("/invalidate/{symbol}", h.HandleInvalidate)
		r.Get("/cache", h.HandleCacheStats)
	})
}
