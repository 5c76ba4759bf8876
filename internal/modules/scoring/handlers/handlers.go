// Package handlers provides HTTP handlers for scoring lookups.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/scoring"
)

// Handler handles scoring HTTP requests
type Handler struct {
	scoring *scoring.Service
	log     zerolog.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(sc *scoring.Service, log zerolog.Logger) *Handler {
	return &Handler{
		scoring: sc,
		log:     log.With().Str("handler", "scoring").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleGetScore handles GET /api/scores/{symbol}
func (h *Handler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	score, err := h.scoring.Score(symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDataUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, score)
}
