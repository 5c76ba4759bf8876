package historical

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/currency"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
	testutil "github.com/seetoh/stockdash/internal/testing"
)

var testTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestStack(t *testing.T, provider domain.MarketDataProvider, benchmark string) (*Service, *portfolio.Repository) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(portfolio.Schema)
	require.NoError(t, err)

	clock := testutil.FixedClock(testTime)
	market := marketdata.NewService(provider, marketdata.NewCache(clock), marketdata.DefaultTTLs(), zerolog.Nop())
	cur := currency.NewService(market, zerolog.Nop())
	repo := portfolio.NewRepository(db)
	return NewService(repo, market, cur, benchmark, clock, zerolog.Nop()), repo
}

func TestSimulateEmptyPortfolio(t *testing.T) {
	svc, _ := newTestStack(t, testutil.NewMockProvider(), "")

	_, err := svc.Simulate(Period1M, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyPortfolio))
}

func TestSimulateUnknownPeriod(t *testing.T) {
	svc, _ := newTestStack(t, testutil.NewMockProvider(), "")

	_, err := svc.Simulate(Period("1W"), nil)
	require.Error(t, err)
}

func TestSimulateActualSeries(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{10, 11, 12, 13}))
	provider.SetHistory("B", testutil.DailySeries("B", testTime, []float64{20, 20, 21, 22}))

	svc, repo := newTestStack(t, provider, "")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 10, AvgCost: 9, Currency: domain.SGD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "B", Shares: 5, AvgCost: 18, Currency: domain.SGD}))

	cmp, err := svc.Simulate(Period1M, nil)
	require.NoError(t, err)

	require.NotNil(t, cmp.Actual)
	require.Len(t, cmp.Actual.Values, 4)
	// Day one: 10*10 + 5*20 = 200. Day four: 10*13 + 5*22 = 240.
	assert.InDelta(t, 200, cmp.Actual.Values[0], 1e-9)
	assert.InDelta(t, 240, cmp.Actual.Values[3], 1e-9)
	assert.InDelta(t, 20, cmp.Actual.Summary.TotalReturnPct, 1e-9)
	assert.False(t, cmp.Approximate, "all-SGD portfolio involves no FX approximation")
	assert.Nil(t, cmp.Suggested)
	assert.Nil(t, cmp.Benchmark)
}

func TestSimulateDateIntersection(t *testing.T) {
	provider := testutil.NewMockProvider()
	// A has 5 bars, B only the last 3; the shared index is B's 3 days.
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{10, 10, 10, 10, 10}))
	provider.SetHistory("B", testutil.DailySeries("B", testTime, []float64{20, 20, 20}))

	svc, repo := newTestStack(t, provider, "")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 1, AvgCost: 10, Currency: domain.SGD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "B", Shares: 1, AvgCost: 20, Currency: domain.SGD}))

	cmp, err := svc.Simulate(PeriodAll, nil)
	require.NoError(t, err)
	assert.Len(t, cmp.Actual.Dates, 3)
}

func TestSimulateCurrencyConversionApproximate(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetHistory("X", testutil.DailySeries("X", testTime, []float64{10, 12}))
	provider.SetFxRate("USDSGD", 1.35)

	svc, repo := newTestStack(t, provider, "")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "X", Shares: 100, AvgCost: 10, Currency: domain.USD}))

	cmp, err := svc.Simulate(Period1M, nil)
	require.NoError(t, err)

	assert.True(t, cmp.Approximate, "current-rate FX conversion is flagged")
	assert.InDelta(t, 100*10*1.35, cmp.Actual.Values[0], 1e-9)
	assert.InDelta(t, 100*12*1.35, cmp.Actual.Values[1], 1e-9)
}

func TestSimulateSuggestedBuyAndHold(t *testing.T) {
	provider := testutil.NewMockProvider()
	// A doubles, B is flat.
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{10, 15, 20}))
	provider.SetHistory("B", testutil.DailySeries("B", testTime, []float64{50, 50, 50}))

	svc, repo := newTestStack(t, provider, "")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 10, AvgCost: 10, Currency: domain.SGD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "B", Shares: 2, AvgCost: 50, Currency: domain.SGD}))

	weights := map[string]float64{"A": 0.5, "B": 0.5}
	cmp, err := svc.Simulate(Period1M, weights)
	require.NoError(t, err)

	require.NotNil(t, cmp.Suggested)
	// Cost basis funds the hypothetical portfolio: 10*10 + 2*50 = 200,
	// 100 SGD per leg. A leg: 10 units doubling to 200; B leg stays 100.
	assert.InDelta(t, 200, cmp.Suggested.Values[0], 1e-9)
	assert.InDelta(t, 300, cmp.Suggested.Values[2], 1e-9)
	assert.InDelta(t, 50, cmp.Suggested.Summary.TotalReturnPct, 1e-9)
}

func TestSimulateBenchmarkRescaledToActualStart(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{10, 10, 10}))
	provider.SetHistory("^GSPC", testutil.DailySeries("^GSPC", testTime, []float64{5000, 5100, 5250}))

	svc, repo := newTestStack(t, provider, "^GSPC")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 10, AvgCost: 8, Currency: domain.SGD}))

	cmp, err := svc.Simulate(Period1M, nil)
	require.NoError(t, err)

	require.NotNil(t, cmp.Benchmark)
	assert.InDelta(t, 100, cmp.Benchmark.Values[0], 1e-9, "benchmark starts at the actual start value")
	assert.InDelta(t, 5250.0/5000*100, cmp.Benchmark.Values[2], 1e-9)
}

func TestSimulateBenchmarkFailureIsNotFatal(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{10, 11}))

	svc, repo := newTestStack(t, provider, "^GSPC")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 1, AvgCost: 10, Currency: domain.SGD}))

	cmp, err := svc.Simulate(Period1M, nil)
	require.NoError(t, err)
	assert.Nil(t, cmp.Benchmark)
	require.NotNil(t, cmp.Actual)
}

func TestSimulateMaxDrawdown(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetHistory("A", testutil.DailySeries("A", testTime, []float64{100, 120, 90, 110}))

	svc, repo := newTestStack(t, provider, "")
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 1, AvgCost: 100, Currency: domain.SGD}))

	cmp, err := svc.Simulate(Period1M, nil)
	require.NoError(t, err)

	require.NotNil(t, cmp.Actual.Summary.MaxDrawdownPct)
	// Peak 120 down to 90 is a 25% drawdown.
	assert.InDelta(t, 25, *cmp.Actual.Summary.MaxDrawdownPct, 1e-9)
}
