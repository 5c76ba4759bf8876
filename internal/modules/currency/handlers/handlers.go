// Package handlers provides HTTP handlers for currency operations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/currency"
)

// Handler handles currency HTTP requests
type Handler struct {
	currency *currency.Service
	log      zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(cur *currency.Service, log zerolog.Logger) *Handler {
	return &Handler{
		currency: cur,
		log:      log.With().Str("handler", "currency").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ConvertRequest represents a request to convert currency
type ConvertRequest struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
}

// HandleConvert handles POST /api/currency/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FromCurrency == "" || req.ToCurrency == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from_currency and to_currency are required"})
		return
	}

	amount, rate, err := h.currency.Convert(req.Amount,
		domain.Currency(req.FromCurrency), domain.Currency(req.ToCurrency))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount": amount,
		"rate":   rate,
	})
}

// HandleGetRates handles GET /api/currency/rates
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reporting_currency": domain.ReportingCurrency,
		"rates":              h.currency.Rates(),
	})
}
