package marketdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/pkg/formulas"
)

// TTLs holds the per-kind cache lifetimes. Zero values fall back to the
// package defaults.
type TTLs struct {
	Quote        time.Duration
	Fx           time.Duration
	Fundamentals time.Duration
	History      time.Duration
}

// DefaultTTLs returns the standard cache lifetimes.
func DefaultTTLs() TTLs {
	return TTLs{
		Quote:        TTLQuote,
		Fx:           TTLFx,
		Fundamentals: TTLFundamentals,
		History:      TTLHistory,
	}
}

func (t TTLs) withDefaults() TTLs {
	d := DefaultTTLs()
	if t.Quote <= 0 {
		t.Quote = d.Quote
	}
	if t.Fx <= 0 {
		t.Fx = d.Fx
	}
	if t.Fundamentals <= 0 {
		t.Fundamentals = d.Fundamentals
	}
	if t.History <= 0 {
		t.History = d.History
	}
	return t
}

// Service is the typed facade over the cache. All modules read market data
// through it; none hold a provider reference.
type Service struct {
	provider domain.MarketDataProvider
	cache    *Cache
	ttls     TTLs
	log      zerolog.Logger
}

// NewService creates the market data service.
func NewService(provider domain.MarketDataProvider, cache *Cache, ttls TTLs, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		ttls:     ttls.withDefaults(),
		log:      log.With().Str("service", "marketdata").Logger(),
	}
}

// Quote returns the cached quote for symbol, refreshing on expiry. The bool
// reports whether the value is stale.
func (s *Service) Quote(symbol string) (*domain.Quote, bool, error) {
	res, err := s.cache.GetOrFetch(Key(KindQuote, symbol), s.ttls.Quote, func() (interface{}, error) {
		return s.provider.GetQuote(symbol)
	})
	if err != nil {
		return nil, false, err
	}
	if res.Stale {
		s.log.Warn().Str("symbol", symbol).Time("fetched_at", res.FetchedAt).
			Msg("Serving stale quote, provider refresh failed")
	}
	return res.Value.(*domain.Quote), res.Stale, nil
}

// FxRate returns the cached exchange rate for a pair like "USDSGD".
func (s *Service) FxRate(pair string) (*domain.FxRate, bool, error) {
	res, err := s.cache.GetOrFetch(Key(KindFx, pair), s.ttls.Fx, func() (interface{}, error) {
		return s.provider.GetFxRate(pair)
	})
	if err != nil {
		return nil, false, err
	}
	if res.Stale {
		s.log.Warn().Str("pair", pair).Time("fetched_at", res.FetchedAt).
			Msg("Serving stale exchange rate, provider refresh failed")
	}
	return res.Value.(*domain.FxRate), res.Stale, nil
}

// Fundamentals returns the cached fundamentals snapshot for symbol.
func (s *Service) Fundamentals(symbol string) (*domain.FundamentalsSnapshot, bool, error) {
	res, err := s.cache.GetOrFetch(Key(KindFundamentals, symbol), s.ttls.Fundamentals, func() (interface{}, error) {
		return s.provider.GetFundamentals(symbol)
	})
	if err != nil {
		return nil, false, err
	}
	return res.Value.(*domain.FundamentalsSnapshot), res.Stale, nil
}

// History returns the cached close-price series for symbol over the given
// range, with MA20, MA50 and RSI14 computed over the series. Each range is
// cached independently.
func (s *Service) History(symbol string, rng domain.HistoryRange) (*domain.TechnicalSeries, bool, error) {
	key := Key(KindHistory, symbol+":"+string(rng))
	res, err := s.cache.GetOrFetch(key, s.ttls.History, func() (interface{}, error) {
		series, err := s.provider.GetHistory(symbol, rng)
		if err != nil {
			return nil, err
		}
		series.MA20 = formulas.CalculateSMA(series.Prices, 20)
		series.MA50 = formulas.CalculateSMA(series.Prices, 50)
		series.RSI14 = formulas.CalculateRSI(series.Prices, 14)
		return series, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.Value.(*domain.TechnicalSeries), res.Stale, nil
}

// Invalidate drops the cached quote and fundamentals for symbol, forcing
// fresh fetches on the next read.
func (s *Service) Invalidate(symbol string) {
	s.cache.Invalidate(Key(KindQuote, symbol))
	s.cache.Invalidate(Key(KindFundamentals, symbol))
}

// EvictExpired removes entries that expired more than maxAge ago.
func (s *Service) EvictExpired(maxAge time.Duration) int {
	removed := s.cache.EvictExpired(maxAge)
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("Evicted expired cache entries")
	}
	return removed
}

// CacheSize returns the number of live cache entries.
func (s *Service) CacheSize() int {
	return s.cache.Len()
}
