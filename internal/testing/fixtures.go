package testing

import (
	"time"

	"github.com/seetoh/stockdash/internal/domain"
)

// DailySeries builds a close-price series with one bar per day ending at end.
// prices[len-1] is the bar on end's date.
func DailySeries(symbol string, end time.Time, prices []float64) *domain.TechnicalSeries {
	end = end.UTC().Truncate(24 * time.Hour)
	series := &domain.TechnicalSeries{
		Symbol: symbol,
		Prices: append([]float64(nil), prices...),
	}
	for i := range prices {
		series.Dates = append(series.Dates, end.AddDate(0, 0, i-len(prices)+1))
	}
	return series
}

// FlatSeries builds a series of n identical closes, useful when only the
// date index matters.
func FlatSeries(symbol string, end time.Time, n int, price float64) *domain.TechnicalSeries {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return DailySeries(symbol, end, prices)
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// FullFundamentals returns a snapshot with every field populated, centred on
// healthy mid-range values. Tests override individual fields as needed.
func FullFundamentals(symbol string) *domain.FundamentalsSnapshot {
	return &domain.FundamentalsSnapshot{
		Symbol:          symbol,
		PERatio:         FloatPtr(20),
		ForwardPE:       FloatPtr(18),
		ROE:             FloatPtr(0.15),
		OperatingMargin: FloatPtr(0.20),
		EPS:             FloatPtr(5),
		QuickRatio:      FloatPtr(1.2),
		FreeCashFlow:    FloatPtr(6e9),
		MarketCap:       Int64Ptr(500e9),
		Beta:            FloatPtr(1.1),
		Sector:          "Technology",
		Company:         symbol + " Inc",
	}
}
