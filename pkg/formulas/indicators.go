// Package formulas provides indicator and statistics helpers shared by the
// scoring engine and the performance simulator.
package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// Args:
//
//	closes: Array of closing prices
//	length: RSI period (typically 14)
//
// Returns:
//
//	Current RSI value (0-100) or nil if insufficient data
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// CalculateSMA calculates a simple moving average and returns the latest value,
// or nil if the series is shorter than the window.
func CalculateSMA(closes []float64, window int) *float64 {
	if len(closes) < window || window <= 0 {
		return nil
	}

	sma := talib.Sma(closes, window)

	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
