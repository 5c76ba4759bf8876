package domain

import "time"

// MarketDataProvider is the external collaborator supplying live market data.
// Implementations may fail or rate-limit; callers go through the market data
// cache, never through a provider directly.
type MarketDataProvider interface {
	GetQuote(symbol string) (*Quote, error)
	GetHistory(symbol string, rng HistoryRange) (*TechnicalSeries, error)
	GetFundamentals(symbol string) (*FundamentalsSnapshot, error)
	GetFxRate(pair string) (*FxRate, error)
}

// Clock supplies the current time. Injected so cache expiry and score
// timestamps are deterministic under test.
type Clock func() time.Time
