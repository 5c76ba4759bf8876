// Package handlers provides HTTP handlers for market data lookups.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
)

// Handler handles market data HTTP requests
type Handler struct {
	market *marketdata.Service
	log    zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(market *marketdata.Service, log zerolog.Logger) *Handler {
	return &Handler{
		market: market,
		log:    log.With().Str("handler", "marketdata").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMarketError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrDataUnavailable) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// HandleGetQuote handles GET /api/market/quote/{symbol}
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, stale, err := h.market.Quote(symbol)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quote": quote,
		"stale": stale,
	})
}

// HandleGetFundamentals handles GET /api/market/fundamentals/{symbol}
func (h *Handler) HandleGetFundamentals(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	fundamentals, stale, err := h.market.Fundamentals(symbol)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fundamentals": fundamentals,
		"stale":        stale,
	})
}

// HandleGetHistory handles GET /api/market/history/{symbol}?range=1y
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	rng := domain.HistoryRange(r.URL.Query().Get("range"))
	if rng == "" {
		rng = domain.Range1Y
	}
	switch rng {
	case domain.Range1M, domain.Range3M, domain.Range6M, domain.Range1Y, domain.Range2Y, domain.RangeMax:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid range"})
		return
	}

	series, stale, err := h.market.History(symbol, rng)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": series,
		"stale":   stale,
	})
}

// HandleGetFxRate handles GET /api/market/fx/{pair}
func (h *Handler) HandleGetFxRate(w http.ResponseWriter, r *http.Request) {
	pair := chi.URLParam(r, "pair")

	rate, stale, err := h.market.FxRate(pair)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rate":  rate,
		"stale": stale,
	})
}

// HandleInvalidate handles POST /api/market/invalidate/{symbol}
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	h.market.Invalidate(symbol)
	h.log.Info().Str("symbol", symbol).Msg("Cache invalidated by request")
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated", "symbol": symbol})
}

// HandleCacheStats handles GET /api/market/cache
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": h.market.CacheSize(),
	})
}
