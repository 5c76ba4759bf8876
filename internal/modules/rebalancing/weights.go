// Package rebalancing turns scores into target weights and concrete
// buy/sell/hold suggestions.
package rebalancing

// MaxWeight is the hard cap on any single position's target weight.
const MaxWeight = 0.25

const (
	maxCapIterations = 100
	epsilon          = 1e-9
)

// Candidate is one symbol eligible for a target weight: every current
// holding plus every watchlist member.
type Candidate struct {
	Symbol     string
	Score      int
	CurrentPct float64
}

// SuggestWeights computes score-proportional target weights with an
// iterative 25% cap. Candidates with non-positive scores get zero weight;
// when no candidate scores positive, weights fall back to an equal split.
// Redistribution of capped excess is proportional to the remaining
// candidates' scores and repeats until stable, since redistribution can
// push another candidate over the cap.
func SuggestWeights(candidates []Candidate) map[string]float64 {
	weights := make(map[string]float64, len(candidates))
	if len(candidates) == 0 {
		return weights
	}

	eligible := make([]Candidate, 0, len(candidates))
	totalScore := 0.0
	for _, c := range candidates {
		if c.Score > 0 {
			eligible = append(eligible, c)
			totalScore += float64(c.Score)
		} else {
			weights[c.Symbol] = 0
		}
	}

	if len(eligible) == 0 {
		equal := 1.0 / float64(len(candidates))
		for _, c := range candidates {
			weights[c.Symbol] = equal
		}
		return weights
	}

	raw := make(map[string]float64, len(eligible))
	for _, c := range eligible {
		raw[c.Symbol] = float64(c.Score) / totalScore
	}

	capped := make(map[string]bool, len(eligible))
	for i := 0; i < maxCapIterations; i++ {
		excess := 0.0
		uncappedScore := 0.0
		for _, c := range eligible {
			if capped[c.Symbol] {
				continue
			}
			if raw[c.Symbol] > MaxWeight+epsilon {
				excess += raw[c.Symbol] - MaxWeight
				raw[c.Symbol] = MaxWeight
				capped[c.Symbol] = true
			} else {
				uncappedScore += float64(c.Score)
			}
		}
		if excess < epsilon || uncappedScore < epsilon {
			break
		}
		for _, c := range eligible {
			if !capped[c.Symbol] {
				raw[c.Symbol] += excess * float64(c.Score) / uncappedScore
			}
		}
	}

	// Renormalise so the weights sum to exactly 1 after capping.
	sum := 0.0
	for _, w := range raw {
		sum += w
	}
	if sum > epsilon {
		for sym, w := range raw {
			weights[sym] = w / sum
		}
	}
	return weights
}
