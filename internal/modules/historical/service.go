// Package historical simulates portfolio performance against the suggested
// allocation and a market benchmark over a chosen lookback period.
package historical

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/currency"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
	"github.com/seetoh/stockdash/pkg/formulas"
)

// Period selects the simulation lookback.
type Period string

const (
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	Period1Y  Period = "1Y"
	PeriodAll Period = "All"
)

// historyRange maps a period onto the provider's range parameter. "All"
// fetches the longest series; the date intersection trims it to the shortest
// constituent history.
func historyRange(p Period) (domain.HistoryRange, error) {
	switch p {
	case Period1M:
		return domain.Range1M, nil
	case Period3M:
		return domain.Range3M, nil
	case Period6M:
		return domain.Range6M, nil
	case Period1Y:
		return domain.Range1Y, nil
	case PeriodAll:
		return domain.RangeMax, nil
	default:
		return "", fmt.Errorf("unknown period %q", p)
	}
}

// Summary holds headline statistics for one simulated series.
type Summary struct {
	TotalReturnPct       float64  `json:"total_return_pct"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	MaxDrawdownPct       *float64 `json:"max_drawdown_pct,omitempty"`
}

// Series is one simulated value line in the reporting currency.
type Series struct {
	Dates   []time.Time `json:"dates"`
	Values  []float64   `json:"values"`
	Summary Summary     `json:"summary"`
}

// Comparison is the simulator output: the portfolio as actually held, a
// hypothetical buy-and-hold of the suggested weights, and the rescaled
// benchmark, all on one intersected date index.
type Comparison struct {
	Period      Period    `json:"period"`
	Actual      *Series   `json:"actual"`
	Suggested   *Series   `json:"suggested,omitempty"`
	Benchmark   *Series   `json:"benchmark,omitempty"`
	Approximate bool      `json:"approximate,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service runs performance simulations.
type Service struct {
	holdings  *portfolio.Repository
	market    *marketdata.Service
	currency  *currency.Service
	benchmark string
	clock     domain.Clock
	log       zerolog.Logger
}

// NewService creates a historical service. A nil clock defaults to time.Now.
func NewService(holdings *portfolio.Repository, market *marketdata.Service, cur *currency.Service, benchmark string, clock domain.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		holdings:  holdings,
		market:    market,
		currency:  cur,
		benchmark: benchmark,
		clock:     clock,
		log:       log.With().Str("service", "historical").Logger(),
	}
}

// constituent carries one holding's aligned price data.
type constituent struct {
	holding domain.Holding
	prices  map[time.Time]float64
	fxRate  float64
}

// Simulate builds the comparison for the period. suggestedWeights is the
// capped target allocation; pass nil to skip the suggested series.
// Historical FX rates are unavailable from the provider, so conversions use
// the current rate and any non-reporting-currency holding marks the result
// approximate.
func (s *Service) Simulate(period Period, suggestedWeights map[string]float64) (*Comparison, error) {
	rng, err := historyRange(period)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.All()
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	cmp := &Comparison{Period: period, GeneratedAt: s.clock()}

	constituents := make([]constituent, 0, len(holdings))
	for _, h := range holdings {
		series, _, err := s.market.History(h.Symbol, rng)
		if err != nil {
			return nil, fmt.Errorf("history for %s: %w", h.Symbol, err)
		}

		rate, err := s.currency.RateToReporting(h.Currency)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", h.Symbol, err)
		}
		if h.Currency != domain.ReportingCurrency {
			cmp.Approximate = true
		}

		prices := make(map[time.Time]float64, len(series.Dates))
		for i, d := range series.Dates {
			prices[d] = series.Prices[i]
		}
		constituents = append(constituents, constituent{holding: h, prices: prices, fxRate: rate.Rate})
	}

	dates := intersectDates(constituents)
	if len(dates) < 2 {
		return nil, fmt.Errorf("%w: constituent histories share fewer than two dates", domain.ErrDataUnavailable)
	}

	// Actual: the portfolio as held, revalued daily.
	actual := make([]float64, len(dates))
	for i, d := range dates {
		total := 0.0
		for _, c := range constituents {
			total += c.holding.Shares * c.prices[d] * c.fxRate
		}
		actual[i] = total
	}
	cmp.Actual = buildSeries(dates, actual)

	if len(suggestedWeights) > 0 {
		cmp.Suggested = s.simulateSuggested(dates, constituents, suggestedWeights, actual[0])
	}

	if s.benchmark != "" {
		bench, err := s.benchmarkSeries(rng, dates, actual[0])
		if err != nil {
			s.log.Warn().Str("symbol", s.benchmark).Err(err).Msg("Benchmark series unavailable")
		} else {
			cmp.Benchmark = bench
		}
	}

	return cmp, nil
}

// simulateSuggested prices a static buy-and-hold of the target weights,
// funded with the portfolio's cost basis (or the first actual value when the
// cost basis is zero), bought at period-start prices.
func (s *Service) simulateSuggested(dates []time.Time, constituents []constituent, weights map[string]float64, firstActual float64) *Series {
	capital := 0.0
	for _, c := range constituents {
		capital += c.holding.Shares * c.holding.AvgCost * c.fxRate
	}
	if capital <= 0 {
		capital = firstActual
	}

	start := dates[0]
	units := make(map[string]float64, len(constituents))
	for _, c := range constituents {
		w := weights[c.holding.Symbol]
		if w <= 0 {
			continue
		}
		startPrice := c.prices[start] * c.fxRate
		if startPrice <= 0 {
			continue
		}
		units[c.holding.Symbol] = capital * w / startPrice
	}

	values := make([]float64, len(dates))
	for i, d := range dates {
		total := 0.0
		for _, c := range constituents {
			total += units[c.holding.Symbol] * c.prices[d] * c.fxRate
		}
		values[i] = total
	}
	return buildSeries(dates, values)
}

// benchmarkSeries rescales the benchmark's own price line so it starts at
// the actual portfolio's starting value. Dates missing from the benchmark
// history carry the last known price forward.
func (s *Service) benchmarkSeries(rng domain.HistoryRange, dates []time.Time, startValue float64) (*Series, error) {
	series, _, err := s.market.History(s.benchmark, rng)
	if err != nil {
		return nil, err
	}

	prices := make(map[time.Time]float64, len(series.Dates))
	for i, d := range series.Dates {
		prices[d] = series.Prices[i]
	}

	startPrice, ok := prices[dates[0]]
	if !ok || startPrice <= 0 {
		return nil, fmt.Errorf("benchmark has no price at period start %s", dates[0].Format("2006-01-02"))
	}

	values := make([]float64, len(dates))
	last := startPrice
	for i, d := range dates {
		if p, ok := prices[d]; ok {
			last = p
		}
		values[i] = last / startPrice * startValue
	}
	return buildSeries(dates, values), nil
}

// intersectDates returns the sorted dates present in every constituent's
// history.
func intersectDates(constituents []constituent) []time.Time {
	if len(constituents) == 0 {
		return nil
	}

	var dates []time.Time
	for d := range constituents[0].prices {
		shared := true
		for _, c := range constituents[1:] {
			if _, ok := c.prices[d]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func buildSeries(dates []time.Time, values []float64) *Series {
	s := &Series{Dates: dates, Values: values}
	if len(values) > 1 && values[0] != 0 {
		s.Summary.TotalReturnPct = (values[len(values)-1] - values[0]) / values[0] * 100
	}
	returns := formulas.CalculateReturns(values)
	if len(returns) > 1 {
		s.Summary.AnnualizedVolatility = formulas.AnnualizedVolatility(returns)
	}
	if md := formulas.CalculateMaxDrawdown(values); md != nil {
		pct := *md * 100
		s.Summary.MaxDrawdownPct = &pct
	}
	return s
}
