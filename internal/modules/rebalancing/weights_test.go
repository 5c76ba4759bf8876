package rebalancing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumWeights(w map[string]float64) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

func TestSuggestWeightsProportionalToScore(t *testing.T) {
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 60},
		{Symbol: "B", Score: 60},
		{Symbol: "C", Score: 60},
		{Symbol: "D", Score: 60},
		{Symbol: "E", Score: 60},
	})

	for sym, w := range weights {
		assert.InDelta(t, 0.20, w, 1e-9, "symbol %s", sym)
	}
	assert.InDelta(t, 1.0, sumWeights(weights), 1e-9)
}

func TestSuggestWeightsEqualScoresSplitEvenly(t *testing.T) {
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 90},
		{Symbol: "B", Score: 90},
	})

	assert.InDelta(t, 0.50, weights["A"], 1e-9)
	assert.InDelta(t, 0.50, weights["B"], 1e-9)
}

func TestSuggestWeightsCapsAndRedistributes(t *testing.T) {
	// A's raw weight is 60%; the cap clamps it to 25% and the 35% excess
	// splits across B..E by their relative scores.
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 90},
		{Symbol: "B", Score: 20},
		{Symbol: "C", Score: 20},
		{Symbol: "D", Score: 10},
		{Symbol: "E", Score: 10},
	})

	assert.InDelta(t, 0.25, weights["A"], 1e-6)
	assert.InDelta(t, 1.0, sumWeights(weights), 1e-9)
	for sym, w := range weights {
		assert.LessOrEqual(t, w, MaxWeight+1e-6, "symbol %s over cap", sym)
	}
	assert.InDelta(t, weights["B"], weights["C"], 1e-9)
	assert.InDelta(t, 2*weights["D"], weights["B"], 1e-6, "redistribution stays score-proportional")
}

func TestSuggestWeightsCascadingCaps(t *testing.T) {
	// Redistribution from the first cap pushes the next symbol over the
	// cap too; the fixed point needs more than one pass.
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 500},
		{Symbol: "B", Score: 400},
		{Symbol: "C", Score: 50},
		{Symbol: "D", Score: 25},
		{Symbol: "E", Score: 15},
		{Symbol: "F", Score: 10},
	})

	for sym, w := range weights {
		assert.LessOrEqual(t, w, MaxWeight+1e-6, "symbol %s over cap", sym)
	}
	assert.InDelta(t, 1.0, sumWeights(weights), 1e-9)
	assert.InDelta(t, 0.25, weights["A"], 1e-6)
	assert.InDelta(t, 0.25, weights["B"], 1e-6)
}

func TestSuggestWeightsExcludesNonPositiveScores(t *testing.T) {
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 80},
		{Symbol: "B", Score: 80},
		{Symbol: "C", Score: 80},
		{Symbol: "D", Score: 80},
		{Symbol: "Z", Score: 0},
	})

	assert.Equal(t, 0.0, weights["Z"])
	assert.InDelta(t, 1.0, sumWeights(weights), 1e-9)
}

func TestSuggestWeightsAllZeroScoresFallBackToEqual(t *testing.T) {
	weights := SuggestWeights([]Candidate{
		{Symbol: "A", Score: 0},
		{Symbol: "B", Score: 0},
	})

	assert.InDelta(t, 0.5, weights["A"], 1e-9)
	assert.InDelta(t, 0.5, weights["B"], 1e-9)
}

func TestSuggestWeightsEmpty(t *testing.T) {
	weights := SuggestWeights(nil)
	assert.Empty(t, weights)
}

func TestSuggestWeightsIdempotent(t *testing.T) {
	candidates := []Candidate{
		{Symbol: "A", Score: 85},
		{Symbol: "B", Score: 70},
		{Symbol: "C", Score: 55},
		{Symbol: "D", Score: 40},
		{Symbol: "E", Score: 30},
	}

	first := SuggestWeights(candidates)
	second := SuggestWeights(candidates)
	require.Equal(t, first, second)
}
