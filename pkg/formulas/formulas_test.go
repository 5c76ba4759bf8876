package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}

	sma := CalculateSMA(closes, 3)
	require.NotNil(t, sma)
	assert.InDelta(t, 5, *sma, 1e-9, "latest 3-bar average of 4,5,6")

	assert.Nil(t, CalculateSMA(closes, 7), "window longer than series")
	assert.Nil(t, CalculateSMA(closes, 0))
}

func TestCalculateRSIMonotonicRise(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rsi := CalculateRSI(closes, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100, *rsi, 1e-6, "no losses pins RSI at 100")
}

func TestCalculateRSIInsufficientData(t *testing.T) {
	assert.Nil(t, CalculateRSI([]float64{1, 2, 3}, 14))
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	assert.Empty(t, CalculateReturns([]float64{100}))
}

func TestAnnualizedVolatility(t *testing.T) {
	// Alternating +1%/-1% daily returns.
	returns := make([]float64, 100)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}

	vol := AnnualizedVolatility(returns)
	daily := StdDev(returns)
	assert.InDelta(t, daily*math.Sqrt(252), vol, 1e-12)
	assert.Greater(t, vol, 0.0)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	md := CalculateMaxDrawdown([]float64{100, 120, 90, 110})
	require.NotNil(t, md)
	assert.InDelta(t, 0.25, *md, 1e-9, "peak 120 to trough 90")

	flat := CalculateMaxDrawdown([]float64{100, 100, 100})
	require.NotNil(t, flat)
	assert.Zero(t, *flat)

	assert.Nil(t, CalculateMaxDrawdown([]float64{100}))
}

func TestMeanAndStdDevEmpty(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev(nil))
}
