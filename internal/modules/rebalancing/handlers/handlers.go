// Package handlers provides HTTP handlers for rebalancing suggestions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/rebalancing"
)

// Handler handles rebalancing HTTP requests
type Handler struct {
	rebalancing *rebalancing.Service
	log         zerolog.Logger
}

// NewHandler creates a new rebalancing handler
func NewHandler(rb *rebalancing.Service, log zerolog.Logger) *Handler {
	return &Handler{
		rebalancing: rb,
		log:         log.With().Str("handler", "rebalancing").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleSuggest handles GET /api/rebalancing/suggest
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	plan, err := h.rebalancing.Suggest()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDataUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
