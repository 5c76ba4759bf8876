package scorers

// TechnicalScorer scores price momentum from moving averages and RSI.
type TechnicalScorer struct{}

// NewTechnicalScorer creates a new technical scorer
func NewTechnicalScorer() *TechnicalScorer {
	return &TechnicalScorer{}
}

// Calculate averages the MA20, MA50 and RSI signals. Each moving average
// signal maps the price/MA ratio linearly: 10% above the MA scores 100, 10%
// below scores 0, at the MA scores 50. RSI scores 50 inside the neutral
// [30,70] band and decays linearly to 0 at the extremes.
// Returns ok=false when price or every indicator is missing.
func (ts *TechnicalScorer) Calculate(price float64, ma20, ma50, rsi *float64) (float64, bool) {
	if price <= 0 {
		return 0, false
	}

	var signals []float64
	if ma20 != nil && *ma20 > 0 {
		signals = append(signals, maSignal(price, *ma20))
	}
	if ma50 != nil && *ma50 > 0 {
		signals = append(signals, maSignal(price, *ma50))
	}
	if rsi != nil {
		signals = append(signals, rsiSignal(*rsi))
	}

	if len(signals) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, s := range signals {
		sum += s
	}
	return round1(sum / float64(len(signals))), true
}

// maSignal maps the price/MA ratio onto 0..100, 50 at the MA, saturating at
// a 10% deviation either side.
func maSignal(price, ma float64) float64 {
	ratio := price / ma
	return clamp(50+(ratio-1)*500, 0, 100)
}

// rsiSignal scores 50 inside [30,70], linearly down to 0 at RSI 0 or 100.
func rsiSignal(rsi float64) float64 {
	switch {
	case rsi < 30:
		return clamp(rsi/30*50, 0, 50)
	case rsi > 70:
		return clamp((100-rsi)/30*50, 0, 50)
	default:
		return 50
	}
}
