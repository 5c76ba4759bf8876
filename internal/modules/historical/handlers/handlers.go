// Package handlers provides HTTP handlers for performance simulation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/historical"
	"github.com/seetoh/stockdash/internal/modules/rebalancing"
)

// Handler handles performance simulation HTTP requests
type Handler struct {
	historical  *historical.Service
	rebalancing *rebalancing.Service
	log         zerolog.Logger
}

// NewHandler creates a new historical handler
func NewHandler(hs *historical.Service, rb *rebalancing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		historical:  hs,
		rebalancing: rb,
		log:         log.With().Str("handler", "historical").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandlePerformance handles GET /api/performance?period=1Y
// The suggested series uses the current rebalancing plan's target weights;
// if a plan cannot be built the comparison proceeds without it.
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	period := historical.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = historical.Period1Y
	}
	switch period {
	case historical.Period1M, historical.Period3M, historical.Period6M, historical.Period1Y, historical.PeriodAll:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid period"})
		return
	}

	var weights map[string]float64
	if plan, err := h.rebalancing.Suggest(); err == nil {
		weights = plan.Weights()
	} else {
		h.log.Warn().Err(err).Msg("No rebalancing plan for suggested series")
	}

	cmp, err := h.historical.Simulate(period, weights)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrEmptyPortfolio):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, domain.ErrDataUnavailable):
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, cmp)
}
