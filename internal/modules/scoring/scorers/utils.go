package scorers

import "math"

// Neutral is the midpoint substituted when a sub-score's inputs are missing.
const Neutral = 50.0

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 rounds to 1 decimal place
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
