package rebalancing

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
	"github.com/seetoh/stockdash/internal/modules/watchlist"
)

// ActionThreshold is the minimum absolute weight delta, in percentage
// points, before a Buy or Sell is suggested. Smaller deltas are rounding
// noise and become Hold.
const ActionThreshold = 1.0

// ActionType is the suggested direction for one symbol.
type ActionType string

const (
	ActionBuy  ActionType = "Buy"
	ActionSell ActionType = "Sell"
	ActionHold ActionType = "Hold"
)

// Action is one rebalancing suggestion.
type Action struct {
	Symbol        string     `json:"symbol"`
	Score         int        `json:"score"`
	CurrentPct    float64    `json:"current_pct"`
	SuggestedPct  float64    `json:"suggested_pct"`
	DeltaPct      float64    `json:"delta_pct"`
	Action        ActionType `json:"action"`
	EstValueDelta float64    `json:"est_value_delta_sgd"`
}

// Plan is a full rebalancing suggestion, ordered by descending |delta|.
type Plan struct {
	ID          string    `json:"id"`
	TotalValue  float64   `json:"total_value_sgd"`
	Actions     []Action  `json:"actions"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Weights returns the plan's suggested allocation as symbol fractions.
func (p *Plan) Weights() map[string]float64 {
	weights := make(map[string]float64, len(p.Actions))
	for _, a := range p.Actions {
		weights[a.Symbol] = a.SuggestedPct / 100
	}
	return weights
}

// Service builds rebalancing plans.
type Service struct {
	portfolio *portfolio.Service
	watchlist *watchlist.Service
	clock     domain.Clock
	log       zerolog.Logger
}

// NewService creates a rebalancing service. A nil clock defaults to time.Now.
func NewService(pf *portfolio.Service, wl *watchlist.Service, clock domain.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		portfolio: pf,
		watchlist: wl,
		clock:     clock,
		log:       log.With().Str("service", "rebalancing").Logger(),
	}
}

// Suggest builds a plan from the current portfolio snapshot plus the
// watchlist. The computation is deterministic for a given snapshot: running
// it twice without market movement yields an identical plan apart from ID
// and timestamp.
func (s *Service) Suggest() (*Plan, error) {
	snap, err := s.portfolio.Aggregate()
	if err != nil {
		return nil, err
	}
	return s.PlanFor(snap)
}

// PlanFor builds a plan against a previously aggregated snapshot.
func (s *Service) PlanFor(snap *portfolio.Snapshot) (*Plan, error) {
	candidates := make([]Candidate, 0, len(snap.Holdings))
	seen := make(map[string]bool, len(snap.Holdings))

	for _, h := range snap.Holdings {
		c := Candidate{Symbol: h.Symbol, CurrentPct: h.Weight * 100}
		if h.Score != nil {
			c.Score = h.Score.Value
		}
		candidates = append(candidates, c)
		seen[h.Symbol] = true
	}

	if s.watchlist != nil {
		watched, err := s.watchlist.List()
		if err != nil {
			s.log.Warn().Err(err).Msg("Watchlist unavailable, planning over holdings only")
		} else {
			for _, w := range watched {
				if seen[w.Symbol] || w.Score == nil {
					continue
				}
				candidates = append(candidates, Candidate{Symbol: w.Symbol, Score: w.Score.Value})
			}
		}
	}

	plan := &Plan{
		ID:          uuid.New().String(),
		TotalValue:  snap.TotalValue,
		GeneratedAt: s.clock(),
	}
	if len(candidates) == 0 {
		return plan, nil
	}

	weights := SuggestWeights(candidates)

	for _, c := range candidates {
		suggested := weights[c.Symbol] * 100
		delta := suggested - c.CurrentPct

		action := ActionHold
		switch {
		case delta > ActionThreshold:
			action = ActionBuy
		case delta < -ActionThreshold:
			action = ActionSell
		}

		plan.Actions = append(plan.Actions, Action{
			Symbol:        c.Symbol,
			Score:         c.Score,
			CurrentPct:    c.CurrentPct,
			SuggestedPct:  suggested,
			DeltaPct:      delta,
			Action:        action,
			EstValueDelta: delta / 100 * snap.TotalValue,
		})
	}

	sort.SliceStable(plan.Actions, func(i, j int) bool {
		return math.Abs(plan.Actions[i].DeltaPct) > math.Abs(plan.Actions[j].DeltaPct)
	})

	return plan, nil
}
