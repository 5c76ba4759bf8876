package marketdata

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seetoh/stockdash/internal/domain"
	testutil "github.com/seetoh/stockdash/internal/testing"
)

func newTestService(provider domain.MarketDataProvider, clock domain.Clock) *Service {
	return NewService(provider, NewCache(clock), DefaultTTLs(), zerolog.Nop())
}

func TestQuoteCachedWithinTTL(t *testing.T) {
	clock := newFakeClock()
	provider := testutil.NewMockProvider()
	provider.SetQuote("AAPL", 190.5, 1.2, 0.63)

	svc := newTestService(provider, clock.Now)

	for i := 0; i < 3; i++ {
		q, stale, err := svc.Quote("AAPL")
		require.NoError(t, err)
		assert.False(t, stale)
		assert.Equal(t, 190.5, q.Price)
	}
	assert.Equal(t, 1, provider.QuoteCalls)

	clock.Advance(TTLQuote + time.Second)
	_, _, err := svc.Quote("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.QuoteCalls)
}

func TestQuoteStaleFlagOnProviderFailure(t *testing.T) {
	clock := newFakeClock()
	provider := testutil.NewMockProvider()
	provider.SetQuote("AAPL", 190.5, 0, 0)

	svc := newTestService(provider, clock.Now)

	_, stale, err := svc.Quote("AAPL")
	require.NoError(t, err)
	assert.False(t, stale)

	clock.Advance(time.Hour)
	provider.SetError(errors.New("rate limited"))

	q, stale, err := svc.Quote("AAPL")
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, 190.5, q.Price)
}

func TestHistoryComputesIndicators(t *testing.T) {
	clock := newFakeClock()
	provider := testutil.NewMockProvider()

	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	provider.SetHistory("AAPL", testutil.DailySeries("AAPL", clock.Now(), prices))

	svc := newTestService(provider, clock.Now)

	series, stale, err := svc.History("AAPL", domain.Range1Y)
	require.NoError(t, err)
	assert.False(t, stale)
	require.NotNil(t, series.MA20)
	require.NotNil(t, series.MA50)
	require.NotNil(t, series.RSI14)

	// Last 20 closes are 140..159, mean 149.5. Monotonic rises pin RSI at 100.
	assert.InDelta(t, 149.5, *series.MA20, 1e-9)
	assert.InDelta(t, 134.5, *series.MA50, 1e-9)
	assert.InDelta(t, 100, *series.RSI14, 1e-6)
}

func TestHistoryCachedPerRange(t *testing.T) {
	clock := newFakeClock()
	provider := testutil.NewMockProvider()
	provider.SetHistory("AAPL", testutil.FlatSeries("AAPL", clock.Now(), 30, 100))

	svc := newTestService(provider, clock.Now)

	_, _, err := svc.History("AAPL", domain.Range1M)
	require.NoError(t, err)
	_, _, err = svc.History("AAPL", domain.Range1M)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.HistoryCalls)

	_, _, err = svc.History("AAPL", domain.Range1Y)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.HistoryCalls, "each range is an independent cache entry")
}

func TestFxRateDataUnavailable(t *testing.T) {
	provider := testutil.NewMockProvider()
	svc := newTestService(provider, newFakeClock().Now)

	_, _, err := svc.FxRate("USDSGD")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestInvalidateDropsQuoteAndFundamentals(t *testing.T) {
	clock := newFakeClock()
	provider := testutil.NewMockProvider()
	provider.SetQuote("AAPL", 190.5, 0, 0)
	provider.SetFundamentals(testutil.FullFundamentals("AAPL"))

	svc := newTestService(provider, clock.Now)

	_, _, err := svc.Quote("AAPL")
	require.NoError(t, err)
	_, _, err = svc.Fundamentals("AAPL")
	require.NoError(t, err)

	svc.Invalidate("AAPL")

	_, _, err = svc.Quote("AAPL")
	require.NoError(t, err)
	_, _, err = svc.Fundamentals("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.QuoteCalls)
	assert.Equal(t, 2, provider.FundCalls)
}
