// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/modules/watchlist"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	watchlist *watchlist.Service
	log       zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(wl *watchlist.Service, log zerolog.Logger) *Handler {
	return &Handler{
		watchlist: wl,
		log:       log.With().Str("handler", "watchlist").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// AddRequest represents a request to watch a symbol
type AddRequest struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.watchlist.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.watchlist.Add(req.Symbol, req.Company)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleRemove handles DELETE /api/watchlist/{symbol}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if err := h.watchlist.Remove(symbol); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "symbol": symbol})
}
