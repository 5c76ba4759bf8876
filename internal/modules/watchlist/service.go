package watchlist

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/scoring"
)

// ScoredEntry is a watchlist entry with its current quote and score.
type ScoredEntry struct {
	Entry
	Price      *float64      `json:"price,omitempty"`
	ChangePct  *float64      `json:"change_pct,omitempty"`
	PriceStale bool          `json:"price_stale,omitempty"`
	Score      *domain.Score `json:"score,omitempty"`
}

// Service manages the watchlist.
type Service struct {
	repo    *Repository
	market  *marketdata.Service
	scoring *scoring.Service
	clock   domain.Clock
	log     zerolog.Logger
}

// NewService creates a watchlist service. A nil clock defaults to time.Now.
func NewService(repo *Repository, market *marketdata.Service, sc *scoring.Service, clock domain.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:    repo,
		market:  market,
		scoring: sc,
		clock:   clock,
		log:     log.With().Str("service", "watchlist").Logger(),
	}
}

// Add verifies the symbol resolves with the provider, then stores it. The
// company name comes from fundamentals when the caller leaves it empty.
func (s *Service) Add(symbol, company string) (*Entry, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	if _, _, err := s.market.Quote(symbol); err != nil {
		return nil, fmt.Errorf("symbol %s did not resolve: %w", symbol, err)
	}

	if company == "" {
		if f, _, err := s.market.Fundamentals(symbol); err == nil {
			company = f.Company
		}
	}

	entry := Entry{Symbol: symbol, Company: company, AddedAt: s.clock()}
	if err := s.repo.Add(entry); err != nil {
		return nil, err
	}

	s.log.Info().Str("symbol", symbol).Msg("Added symbol to watchlist")
	return &entry, nil
}

// Remove drops a symbol from the watchlist.
func (s *Service) Remove(symbol string) error {
	return s.repo.Remove(symbol)
}

// Symbols returns the watched symbols in order.
func (s *Service) Symbols() ([]string, error) {
	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	return symbols, nil
}

// List returns every entry with its live quote and score. Entries whose
// market data is unavailable are listed without a price rather than dropped.
func (s *Service) List() ([]ScoredEntry, error) {
	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	out := make([]ScoredEntry, 0, len(entries))
	for _, e := range entries {
		se := ScoredEntry{Entry: e}

		if quote, stale, err := s.market.Quote(e.Symbol); err == nil {
			se.Price = &quote.Price
			se.ChangePct = &quote.ChangePct
			se.PriceStale = stale
		} else {
			s.log.Warn().Str("symbol", e.Symbol).Err(err).Msg("Watchlist quote unavailable")
		}

		if score, err := s.scoring.Score(e.Symbol); err == nil {
			se.Score = score
		}

		out = append(out, se)
	}
	return out, nil
}
