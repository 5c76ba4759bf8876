package scorers

// LiquidityScorer scores short-term solvency from the quick ratio.
type LiquidityScorer struct{}

// NewLiquidityScorer creates a new liquidity scorer
func NewLiquidityScorer() *LiquidityScorer {
	return &LiquidityScorer{}
}

// Calculate maps quick ratio × 50 onto [0,100]: a ratio of 1.0 is the
// midpoint, 2.0 or above saturates. Returns ok=false when missing.
func (ls *LiquidityScorer) Calculate(quickRatio *float64) (float64, bool) {
	if quickRatio == nil {
		return 0, false
	}
	return round1(clamp(*quickRatio*50, 0, 100)), true
}
