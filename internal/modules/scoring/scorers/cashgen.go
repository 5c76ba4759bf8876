package scorers

// CashGenerationScorer scores free cash flow on absolute size bands.
type CashGenerationScorer struct{}

// NewCashGenerationScorer creates a new cash generation scorer
func NewCashGenerationScorer() *CashGenerationScorer {
	return &CashGenerationScorer{}
}

// Calculate scores free cash flow stepwise: 10B+ scores 100, 5B+ scores 80,
// 1B+ scores 55, any positive amount 30, zero or negative 0.
// Returns ok=false when missing.
func (cs *CashGenerationScorer) Calculate(freeCashFlow *float64) (float64, bool) {
	if freeCashFlow == nil {
		return 0, false
	}

	fcf := *freeCashFlow
	switch {
	case fcf >= 10e9:
		return 100, true
	case fcf >= 5e9:
		return 80, true
	case fcf >= 1e9:
		return 55, true
	case fcf > 0:
		return 30, true
	default:
		return 0, true
	}
}
