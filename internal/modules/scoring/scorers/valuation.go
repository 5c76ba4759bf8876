package scorers

// ValuationScorer scores how cheaply earnings are priced.
type ValuationScorer struct{}

// NewValuationScorer creates a new valuation scorer
func NewValuationScorer() *ValuationScorer {
	return &ValuationScorer{}
}

// Calculate averages an inverse P/E component and an earnings yield
// component. P/E scores 100 − 2·P/E clamped, with non-positive P/E (negative
// earnings) at the floor. Earnings yield (EPS/price) in [0,10%] maps linearly
// onto 0..100. Returns ok=false when neither component is computable.
func (vs *ValuationScorer) Calculate(pe, eps *float64, price float64) (float64, bool) {
	var components []float64

	if pe != nil {
		if *pe <= 0 {
			components = append(components, 0)
		} else {
			components = append(components, clamp(100-2*(*pe), 0, 100))
		}
	}

	if eps != nil && price > 0 {
		yield := *eps / price
		components = append(components, clamp(yield/0.10*100, 0, 100))
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
