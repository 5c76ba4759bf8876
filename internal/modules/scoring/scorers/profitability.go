package scorers

// ProfitabilityScorer scores return on equity and operating margin.
type ProfitabilityScorer struct{}

// NewProfitabilityScorer creates a new profitability scorer
func NewProfitabilityScorer() *ProfitabilityScorer {
	return &ProfitabilityScorer{}
}

// Calculate averages the ROE and operating margin components. ROE in [0,30%]
// maps linearly onto 0..100, operating margin in [0,40%] likewise; negatives
// clamp to 0. Both ratios are fractions (0.15 = 15%).
// Returns ok=false when both fields are missing.
func (ps *ProfitabilityScorer) Calculate(roe, operatingMargin *float64) (float64, bool) {
	var components []float64
	if roe != nil {
		components = append(components, clamp(*roe/0.30*100, 0, 100))
	}
	if operatingMargin != nil {
		components = append(components, clamp(*operatingMargin/0.40*100, 0, 100))
	}

	if len(components) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, c := range components {
		sum += c
	}
	return round1(sum / float64(len(components))), true
}
