package portfolio

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/currency"
	"github.com/seetoh/stockdash/internal/modules/scoring"
)

// HoldingView is one holding enriched with live market data, all monetary
// figures in the reporting currency. Prices convert exactly once here;
// downstream consumers never re-convert.
type HoldingView struct {
	domain.Holding
	Price       *float64      `json:"price,omitempty"`
	PriceStale  bool          `json:"price_stale,omitempty"`
	FxFallback  bool          `json:"fx_fallback,omitempty"`
	MarketValue float64       `json:"market_value_sgd"`
	CostBasis   float64       `json:"cost_basis_sgd"`
	GainLoss    float64       `json:"gain_loss_sgd"`
	ReturnPct   *float64      `json:"return_pct,omitempty"`
	Weight      float64       `json:"weight"`
	Score       *domain.Score `json:"score,omitempty"`
	PERatio     *float64      `json:"pe_ratio,omitempty"`
	Beta        *float64      `json:"beta,omitempty"`
	Region      string        `json:"region"`
	Sector      string        `json:"sector"`
}

// Snapshot is the aggregated portfolio state. Weighted metrics are
// value-weighted; Undefined marks a zero-value portfolio whose ratios
// cannot be computed.
type Snapshot struct {
	Holdings      []HoldingView      `json:"holdings"`
	TotalValue    float64            `json:"total_value_sgd"`
	TotalCost     float64            `json:"total_cost_sgd"`
	TotalGainLoss float64            `json:"total_gain_loss_sgd"`
	ReturnPct     *float64           `json:"return_pct,omitempty"`
	WeightedScore *float64           `json:"weighted_score,omitempty"`
	WeightedPE    *float64           `json:"weighted_pe,omitempty"`
	WeightedBeta  *float64           `json:"weighted_beta,omitempty"`
	Undefined     bool               `json:"undefined,omitempty"`
	Degraded      bool               `json:"degraded,omitempty"`
	Regions       map[string]float64 `json:"regions"`
	Sectors       map[string]float64 `json:"sectors"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// Service aggregates holdings into a portfolio snapshot.
type Service struct {
	repo     *Repository
	market   *marketdata.Service
	currency *currency.Service
	scoring  *scoring.Service
	clock    domain.Clock
	log      zerolog.Logger
}

// NewService creates a portfolio service. A nil clock defaults to time.Now.
func NewService(repo *Repository, market *marketdata.Service, cur *currency.Service, sc *scoring.Service, clock domain.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		market:   market,
		currency: cur,
		scoring:  sc,
		clock:    clock,
		log:      log.With().Str("service", "portfolio").Logger(),
	}
}

// Repository exposes the holdings store for handlers.
func (s *Service) Repository() *Repository {
	return s.repo
}

// RegionForSymbol infers the listing market from the symbol suffix.
func RegionForSymbol(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".SI"):
		return "SG"
	case strings.HasSuffix(symbol, ".HK"):
		return "HK"
	default:
		return "US"
	}
}

// Aggregate builds the portfolio snapshot from the stored holdings. Holdings
// whose quote is unavailable stay in the list unpriced and are excluded from
// totals; degraded inputs (stale quotes, fallback FX) set Degraded.
func (s *Service) Aggregate() (*Snapshot, error) {
	holdings, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Regions:     make(map[string]float64),
		Sectors:     make(map[string]float64),
		GeneratedAt: s.clock(),
	}

	for _, h := range holdings {
		view := HoldingView{
			Holding: h,
			Region:  RegionForSymbol(h.Symbol),
			Sector:  "Unknown",
		}

		rate, err := s.currency.RateToReporting(h.Currency)
		if err != nil {
			s.log.Warn().Str("symbol", h.Symbol).Err(err).Msg("No rate for holding currency, excluding from totals")
			snap.Degraded = true
			snap.Holdings = append(snap.Holdings, view)
			continue
		}
		view.FxFallback = rate.Fallback
		if rate.Fallback || rate.Stale {
			snap.Degraded = true
		}

		quote, stale, err := s.market.Quote(h.Symbol)
		if err != nil {
			s.log.Warn().Str("symbol", h.Symbol).Err(err).Msg("Quote unavailable, holding excluded from totals")
			snap.Degraded = true
			snap.Holdings = append(snap.Holdings, view)
			continue
		}
		view.Price = &quote.Price
		view.PriceStale = stale
		if stale {
			snap.Degraded = true
		}

		view.MarketValue = h.Shares * quote.Price * rate.Rate
		view.CostBasis = h.Shares * h.AvgCost * rate.Rate
		view.GainLoss = view.MarketValue - view.CostBasis
		if view.CostBasis != 0 {
			pct := view.GainLoss / view.CostBasis * 100
			view.ReturnPct = &pct
		}

		if f, _, err := s.market.Fundamentals(h.Symbol); err == nil {
			view.PERatio = f.PERatio
			view.Beta = f.Beta
			if f.Sector != "" {
				view.Sector = f.Sector
			}
			if view.Company == "" {
				view.Company = f.Company
			}
		}

		if score, err := s.scoring.Score(h.Symbol); err == nil {
			view.Score = score
		}

		snap.TotalValue += view.MarketValue
		snap.TotalCost += view.CostBasis
		snap.Holdings = append(snap.Holdings, view)
	}

	snap.TotalGainLoss = snap.TotalValue - snap.TotalCost
	if snap.TotalCost != 0 {
		pct := snap.TotalGainLoss / snap.TotalCost * 100
		snap.ReturnPct = &pct
	}

	if snap.TotalValue == 0 {
		// Zero-value portfolio: weights and weighted metrics are undefined,
		// never divided.
		snap.Undefined = true
		return snap, nil
	}

	var wScore, wPE, wBeta float64
	var hasScore, hasPE, hasBeta bool
	for i := range snap.Holdings {
		v := &snap.Holdings[i]
		if v.Price == nil {
			continue
		}
		v.Weight = v.MarketValue / snap.TotalValue

		snap.Regions[v.Region] += v.Weight * 100
		snap.Sectors[v.Sector] += v.Weight * 100

		if v.Score != nil {
			wScore += v.Weight * float64(v.Score.Value)
			hasScore = true
		}
		if v.PERatio != nil && *v.PERatio > 0 {
			wPE += v.Weight * *v.PERatio
			hasPE = true
		}
		if v.Beta != nil {
			wBeta += v.Weight * *v.Beta
			hasBeta = true
		}
	}

	if hasScore {
		snap.WeightedScore = &wScore
	}
	if hasPE {
		snap.WeightedPE = &wPE
	}
	if hasBeta {
		snap.WeightedBeta = &wBeta
	}

	return snap, nil
}
