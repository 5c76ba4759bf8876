// Package domain contains the core data records shared across modules.
// The domain layer is pure: no infrastructure dependencies.
package domain

import "time"

// Currency is an ISO currency code for a holding's trading currency.
type Currency string

const (
	SGD Currency = "SGD"
	HKD Currency = "HKD"
	USD Currency = "USD"
)

// ReportingCurrency is the single currency into which all portfolio figures
// are normalized for aggregation.
const ReportingCurrency = SGD

// Quote is a point-in-time price snapshot for one symbol. Immutable once
// fetched; a newer fetch supersedes it, never mutates it.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	AsOf      time.Time `json:"as_of"`
}

// FundamentalsSnapshot holds one symbol's fundamental metrics per cache
// refresh. Fields the provider could not supply stay nil; consumers must
// handle missing fields explicitly.
type FundamentalsSnapshot struct {
	Symbol          string   `json:"symbol"`
	PERatio         *float64 `json:"pe_ratio,omitempty"`
	ForwardPE       *float64 `json:"forward_pe,omitempty"`
	ROE             *float64 `json:"roe,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	EPS             *float64 `json:"eps,omitempty"`
	QuickRatio      *float64 `json:"quick_ratio,omitempty"`
	FreeCashFlow    *float64 `json:"free_cash_flow,omitempty"`
	MarketCap       *int64   `json:"market_cap,omitempty"`
	Beta            *float64 `json:"beta,omitempty"`
	Sector          string   `json:"sector,omitempty"`
	Company         string   `json:"company,omitempty"`
}

// HistoryRange selects the lookback window for a historical price series.
type HistoryRange string

const (
	Range1M  HistoryRange = "1mo"
	Range3M  HistoryRange = "3mo"
	Range6M  HistoryRange = "6mo"
	Range1Y  HistoryRange = "1y"
	Range2Y  HistoryRange = "2y"
	RangeMax HistoryRange = "max"
)

// TechnicalSeries is a daily close-price series ordered ascending by date,
// with the latest derived indicator values attached.
type TechnicalSeries struct {
	Symbol string      `json:"symbol"`
	Dates  []time.Time `json:"dates"`
	Prices []float64   `json:"prices"`
	MA20   *float64    `json:"ma20,omitempty"`
	MA50   *float64    `json:"ma50,omitempty"`
	RSI14  *float64    `json:"rsi14,omitempty"`
}

// PriceAt returns the close on the given date, or false if the date is not in
// the series.
func (t *TechnicalSeries) PriceAt(date time.Time) (float64, bool) {
	for i, d := range t.Dates {
		if d.Equal(date) {
			return t.Prices[i], true
		}
	}
	return 0, false
}

// FxRate is a cached exchange rate for a currency pair such as "USDSGD".
type FxRate struct {
	Pair string    `json:"pair"`
	Rate float64   `json:"rate"`
	AsOf time.Time `json:"as_of"`
}

// Holding is a position owned by the user. Created by user action and owned
// by the holdings store; analytical code reads a snapshot and never mutates.
type Holding struct {
	Symbol   string   `json:"symbol"`
	Company  string   `json:"company"`
	Shares   float64  `json:"shares"`
	AvgCost  float64  `json:"avg_cost"`
	Currency Currency `json:"currency"`
}

// Recommendation is the discrete tier derived from a composite score.
type Recommendation string

const (
	StrongBuy  Recommendation = "Strong Buy"
	Buy        Recommendation = "Buy"
	Hold       Recommendation = "Hold"
	Sell       Recommendation = "Sell"
	StrongSell Recommendation = "Strong Sell"
)

// RecommendationFor maps a composite score to its tier. Breakpoints are
// inclusive lower bounds and form the single canonical table for the whole
// system: 80 Strong Buy, 65 Buy, 50 Hold, 35 Sell, else Strong Sell.
func RecommendationFor(score int) Recommendation {
	switch {
	case score >= 80:
		return StrongBuy
	case score >= 65:
		return Buy
	case score >= 50:
		return Hold
	case score >= 35:
		return Sell
	default:
		return StrongSell
	}
}

// Score is a composite 0-100 rating for one symbol. Derived entirely from the
// fundamentals and technical series in cache; never persisted.
type Score struct {
	Symbol         string             `json:"symbol"`
	Value          int                `json:"value"`
	Recommendation Recommendation     `json:"recommendation"`
	Components     map[string]float64 `json:"components"`
	Partial        bool               `json:"partial"`
	ComputedAt     time.Time          `json:"computed_at"`
}
