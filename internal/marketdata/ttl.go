package marketdata

import "time"

// TTL constants per data kind. These are added to the clock's now when
// storing to calculate expires_at.
const (
	// Short-lived data (changes frequently)
	TTLQuote = 5 * time.Minute // Current price snapshots
	TTLFx    = 5 * time.Minute // Currency exchange rates

	// Session-scoped data (stable within a trading day)
	TTLFundamentals = 12 * time.Hour // Fundamental metrics, updated with filings
	TTLHistory      = 24 * time.Hour // Daily close series, one new bar per day
)

// Data kinds. Cache keys are "kind:symbol" so the same symbol can hold
// independent entries per kind.
const (
	KindQuote        = "quote"
	KindFx           = "fx"
	KindFundamentals = "fundamentals"
	KindHistory      = "history"
)

// Key builds the composite cache key for a kind and symbol.
func Key(kind, symbol string) string {
	return kind + ":" + symbol
}
