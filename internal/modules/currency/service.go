// Package currency normalizes monetary amounts into the reporting currency.
// Live rates come through the market data cache; hardcoded fallbacks keep
// conversion working when the provider is unreachable.
package currency

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
)

// fallbackToSGD holds the last-resort conversion rates into SGD. Used only
// when no live rate is available, and every use is flagged.
var fallbackToSGD = map[domain.Currency]float64{
	domain.SGD: 1.0,
	domain.USD: 1.35,
	domain.HKD: 0.173,
}

// Rate is one resolved conversion rate with its provenance flags.
type Rate struct {
	From     domain.Currency `json:"from"`
	To       domain.Currency `json:"to"`
	Rate     float64         `json:"rate"`
	Stale    bool            `json:"stale,omitempty"`
	Fallback bool            `json:"fallback,omitempty"`
}

// Service converts amounts between currencies with SGD as the pivot.
type Service struct {
	market *marketdata.Service
	log    zerolog.Logger
}

// NewService creates a currency service.
func NewService(market *marketdata.Service, log zerolog.Logger) *Service {
	return &Service{
		market: market,
		log:    log.With().Str("service", "currency").Logger(),
	}
}

// RateToReporting resolves the rate from cur into the reporting currency.
// Order of preference: live cached rate, stale cached rate, hardcoded
// fallback. An unknown currency with no live rate is an error.
func (s *Service) RateToReporting(cur domain.Currency) (Rate, error) {
	r := Rate{From: cur, To: domain.ReportingCurrency}
	if cur == domain.ReportingCurrency {
		r.Rate = 1.0
		return r, nil
	}

	fx, stale, err := s.market.FxRate(string(cur) + string(domain.ReportingCurrency))
	if err == nil {
		r.Rate = fx.Rate
		r.Stale = stale
		return r, nil
	}

	fallback, ok := fallbackToSGD[cur]
	if !ok {
		return Rate{}, fmt.Errorf("no rate available for %s: %w", cur, err)
	}

	s.log.Warn().Str("currency", string(cur)).Float64("rate", fallback).
		Msg("Using fallback exchange rate, live rate unavailable")
	r.Rate = fallback
	r.Fallback = true
	return r, nil
}

// Convert converts an amount from one currency to another via the reporting
// currency. The returned Rate carries the effective cross rate and the
// combined provenance flags of both legs.
func (s *Service) Convert(amount float64, from, to domain.Currency) (float64, Rate, error) {
	if from == to {
		return amount, Rate{From: from, To: to, Rate: 1.0}, nil
	}

	fromLeg, err := s.RateToReporting(from)
	if err != nil {
		return 0, Rate{}, err
	}

	toLeg, err := s.RateToReporting(to)
	if err != nil {
		return 0, Rate{}, err
	}
	if toLeg.Rate == 0 {
		return 0, Rate{}, fmt.Errorf("zero rate for %s", to)
	}

	cross := Rate{
		From:     from,
		To:       to,
		Rate:     fromLeg.Rate / toLeg.Rate,
		Stale:    fromLeg.Stale || toLeg.Stale,
		Fallback: fromLeg.Fallback || toLeg.Fallback,
	}
	return amount * cross.Rate, cross, nil
}

// ToReporting converts an amount into the reporting currency.
func (s *Service) ToReporting(amount float64, from domain.Currency) (float64, Rate, error) {
	r, err := s.RateToReporting(from)
	if err != nil {
		return 0, Rate{}, err
	}
	return amount * r.Rate, r, nil
}

// Rates resolves the reporting rate for every supported currency. Handlers
// expose this for the dashboard's rate panel.
func (s *Service) Rates() []Rate {
	out := make([]Rate, 0, len(fallbackToSGD))
	for _, cur := range []domain.Currency{domain.SGD, domain.USD, domain.HKD} {
		r, err := s.RateToReporting(cur)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
