package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/currency"
	"github.com/seetoh/stockdash/internal/modules/scoring"
	testutil "github.com/seetoh/stockdash/internal/testing"
)

var testTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestStack(t *testing.T, provider domain.MarketDataProvider) (*Service, *Repository) {
	clock := testutil.FixedClock(testTime)
	market := marketdata.NewService(provider, marketdata.NewCache(clock), marketdata.DefaultTTLs(), zerolog.Nop())
	cur := currency.NewService(market, zerolog.Nop())
	sc := scoring.NewService(market, clock, zerolog.Nop())
	repo := NewRepository(setupTestDB(t))
	return NewService(repo, market, cur, sc, clock, zerolog.Nop()), repo
}

func TestAggregateSingleUSDHolding(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetQuote("X", 12, 0, 0)
	provider.SetFxRate("USDSGD", 1.35)

	svc, repo := newTestStack(t, provider)
	require.NoError(t, repo.Save(domain.Holding{Symbol: "X", Shares: 100, AvgCost: 10, Currency: domain.USD}))

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 1)
	v := snap.Holdings[0]
	assert.InDelta(t, 1620, v.MarketValue, 1e-9)
	assert.InDelta(t, 1350, v.CostBasis, 1e-9)
	assert.InDelta(t, 270, v.GainLoss, 1e-9)
	require.NotNil(t, v.ReturnPct)
	assert.InDelta(t, 20, *v.ReturnPct, 1e-9)
	assert.InDelta(t, 1, v.Weight, 1e-9)

	assert.InDelta(t, 1620, snap.TotalValue, 1e-9)
	assert.InDelta(t, 270, snap.TotalGainLoss, 1e-9)
	require.NotNil(t, snap.ReturnPct)
	assert.InDelta(t, 20, *snap.ReturnPct, 1e-9)
	assert.False(t, snap.Undefined)
	assert.Equal(t, testTime, snap.GeneratedAt)
}

func TestAggregateRegionAndSectorExposure(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetQuote("D05.SI", 30, 0, 0)
	provider.SetQuote("0700.HK", 400, 0, 0)
	provider.SetFxRate("HKDSGD", 0.173)
	f := testutil.FullFundamentals("D05.SI")
	f.Sector = "Financial Services"
	provider.SetFundamentals(f)

	svc, repo := newTestStack(t, provider)
	require.NoError(t, repo.Save(domain.Holding{Symbol: "D05.SI", Shares: 100, AvgCost: 25, Currency: domain.SGD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "0700.HK", Shares: 100, AvgCost: 380, Currency: domain.HKD}))

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	// 100*30 = 3000 SGD and 100*400*0.173 = 6920 SGD.
	total := 3000 + 6920.0
	assert.InDelta(t, total, snap.TotalValue, 1e-9)
	assert.InDelta(t, 3000/total*100, snap.Regions["SG"], 1e-9)
	assert.InDelta(t, 6920/total*100, snap.Regions["HK"], 1e-9)
	assert.InDelta(t, 3000/total*100, snap.Sectors["Financial Services"], 1e-9)
	assert.InDelta(t, 6920/total*100, snap.Sectors["Unknown"], 1e-9)
}

func TestAggregateUnpricedHoldingExcludedFromTotals(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetQuote("GOOD", 50, 0, 0)
	provider.SetFxRate("USDSGD", 1.35)

	svc, repo := newTestStack(t, provider)
	require.NoError(t, repo.Save(domain.Holding{Symbol: "GOOD", Shares: 10, AvgCost: 40, Currency: domain.USD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "DEAD", Shares: 10, AvgCost: 40, Currency: domain.USD}))

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	require.Len(t, snap.Holdings, 2, "unpriced holdings stay in the list")
	assert.InDelta(t, 10*50*1.35, snap.TotalValue, 1e-9)
	assert.True(t, snap.Degraded)

	for _, v := range snap.Holdings {
		if v.Symbol == "DEAD" {
			assert.Nil(t, v.Price)
			assert.Zero(t, v.Weight)
		}
	}
}

func TestAggregateFxFallbackStillProducesTotals(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetQuote("0700.HK", 400, 0, 0)
	// No HKDSGD rate registered; FxRate calls fail and the fixed 0.173
	// fallback applies.

	svc, repo := newTestStack(t, provider)
	require.NoError(t, repo.Save(domain.Holding{Symbol: "0700.HK", Shares: 100, AvgCost: 380, Currency: domain.HKD}))

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	assert.InDelta(t, 100*400*0.173, snap.TotalValue, 1e-9)
	assert.True(t, snap.Degraded)
	assert.True(t, snap.Holdings[0].FxFallback)
}

func TestAggregateEmptyPortfolioUndefined(t *testing.T) {
	svc, _ := newTestStack(t, testutil.NewMockProvider())

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	assert.True(t, snap.Undefined || snap.TotalValue == 0)
	assert.Zero(t, snap.TotalValue)
	assert.Nil(t, snap.WeightedScore)
	assert.Nil(t, snap.WeightedPE)
	assert.Nil(t, snap.WeightedBeta)
}

func TestAggregateWeightedMetrics(t *testing.T) {
	provider := testutil.NewMockProvider()
	provider.SetQuote("A", 100, 0, 0)
	provider.SetQuote("B", 100, 0, 0)

	fa := testutil.FullFundamentals("A")
	fa.PERatio = testutil.FloatPtr(10)
	fa.Beta = testutil.FloatPtr(1.0)
	provider.SetFundamentals(fa)

	fb := testutil.FullFundamentals("B")
	fb.PERatio = testutil.FloatPtr(30)
	fb.Beta = testutil.FloatPtr(2.0)
	provider.SetFundamentals(fb)

	svc, repo := newTestStack(t, provider)
	require.NoError(t, repo.Save(domain.Holding{Symbol: "A", Shares: 30, AvgCost: 90, Currency: domain.SGD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "B", Shares: 10, AvgCost: 90, Currency: domain.SGD}))

	snap, err := svc.Aggregate()
	require.NoError(t, err)

	// A carries 75% of value, B 25%.
	require.NotNil(t, snap.WeightedPE)
	assert.InDelta(t, 0.75*10+0.25*30, *snap.WeightedPE, 1e-9)
	require.NotNil(t, snap.WeightedBeta)
	assert.InDelta(t, 0.75*1.0+0.25*2.0, *snap.WeightedBeta, 1e-9)
	require.NotNil(t, snap.WeightedScore)
	assert.GreaterOrEqual(t, *snap.WeightedScore, 0.0)
	assert.LessOrEqual(t, *snap.WeightedScore, 100.0)
}

func TestAggregateSurfacesRepositoryErrors(t *testing.T) {
	provider := testutil.NewMockProvider()
	clock := testutil.FixedClock(testTime)
	market := marketdata.NewService(provider, marketdata.NewCache(clock), marketdata.DefaultTTLs(), zerolog.Nop())
	cur := currency.NewService(market, zerolog.Nop())
	sc := scoring.NewService(market, clock, zerolog.Nop())

	db := setupTestDB(t)
	db.Close()
	svc := NewService(NewRepository(db), market, cur, sc, clock, zerolog.Nop())

	_, err := svc.Aggregate()
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDataUnavailable), "store IO failures are not provider failures")
}
