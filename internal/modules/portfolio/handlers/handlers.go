// Package handlers provides HTTP handlers for the portfolio.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	portfolio *portfolio.Service
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(pf *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		portfolio: pf,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleGetSnapshot handles GET /api/portfolio
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.portfolio.Aggregate()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleListHoldings handles GET /api/portfolio/holdings
func (h *Handler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolio.Repository().All()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	writeJSON(w, http.StatusOK, holdings)
}

// HandleSaveHolding handles POST /api/portfolio/holdings
func (h *Handler) HandleSaveHolding(w http.ResponseWriter, r *http.Request) {
	var holding domain.Holding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.portfolio.Repository().Save(holding); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.log.Info().Str("symbol", holding.Symbol).Float64("shares", holding.Shares).Msg("Holding saved")
	writeJSON(w, http.StatusOK, holding)
}

// HandleRemoveHolding handles DELETE /api/portfolio/holdings/{symbol}
func (h *Handler) HandleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.portfolio.Repository().Remove(symbol); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "symbol": symbol})
}
