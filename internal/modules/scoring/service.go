// Package scoring computes the composite 0-100 rating behind every
// recommendation. Inputs come through the market data cache; missing
// fundamentals degrade sub-scores to the neutral midpoint instead of failing
// the computation.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/scoring/scorers"
)

// Sub-score weights. They sum to 1.
const (
	WeightTechnical      = 0.25
	WeightProfitability  = 0.25
	WeightValuation      = 0.20
	WeightLiquidity      = 0.15
	WeightCashGeneration = 0.15
)

// Service computes composite scores.
type Service struct {
	market *marketdata.Service
	clock  domain.Clock
	log    zerolog.Logger

	technical     *scorers.TechnicalScorer
	profitability *scorers.ProfitabilityScorer
	valuation     *scorers.ValuationScorer
	liquidity     *scorers.LiquidityScorer
	cash          *scorers.CashGenerationScorer
}

// NewService creates a scoring service. A nil clock defaults to time.Now.
func NewService(market *marketdata.Service, clock domain.Clock, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		market:        market,
		clock:         clock,
		log:           log.With().Str("service", "scoring").Logger(),
		technical:     scorers.NewTechnicalScorer(),
		profitability: scorers.NewProfitabilityScorer(),
		valuation:     scorers.NewValuationScorer(),
		liquidity:     scorers.NewLiquidityScorer(),
		cash:          scorers.NewCashGenerationScorer(),
	}
}

// Score computes the composite score for one symbol. A missing quote is
// fatal; missing fundamentals or history degrade the affected sub-scores to
// the neutral midpoint and set Partial.
func (s *Service) Score(symbol string) (*domain.Score, error) {
	quote, _, err := s.market.Quote(symbol)
	if err != nil {
		return nil, fmt.Errorf("cannot score %s without a price: %w", symbol, err)
	}

	partial := false

	fundamentals, _, err := s.market.Fundamentals(symbol)
	if err != nil {
		s.log.Warn().Str("symbol", symbol).Err(err).Msg("Fundamentals unavailable, scoring with neutral midpoints")
		fundamentals = &domain.FundamentalsSnapshot{Symbol: symbol}
		partial = true
	}

	series, _, err := s.market.History(symbol, domain.Range1Y)
	if err != nil {
		s.log.Warn().Str("symbol", symbol).Err(err).Msg("History unavailable, technical sub-score is neutral")
		series = nil
		partial = true
	}

	components := make(map[string]float64, 5)

	technical := scorers.Neutral
	if series != nil {
		if v, ok := s.technical.Calculate(quote.Price, series.MA20, series.MA50, series.RSI14); ok {
			technical = v
		} else {
			partial = true
		}
	}
	components["technical"] = technical

	components["profitability"] = s.subScore(
		&partial, func() (float64, bool) {
			return s.profitability.Calculate(fundamentals.ROE, fundamentals.OperatingMargin)
		})
	components["valuation"] = s.subScore(
		&partial, func() (float64, bool) {
			return s.valuation.Calculate(fundamentals.PERatio, fundamentals.EPS, quote.Price)
		})
	components["liquidity"] = s.subScore(
		&partial, func() (float64, bool) {
			return s.liquidity.Calculate(fundamentals.QuickRatio)
		})
	components["cash_generation"] = s.subScore(
		&partial, func() (float64, bool) {
			return s.cash.Calculate(fundamentals.FreeCashFlow)
		})

	total := components["technical"]*WeightTechnical +
		components["profitability"]*WeightProfitability +
		components["valuation"]*WeightValuation +
		components["liquidity"]*WeightLiquidity +
		components["cash_generation"]*WeightCashGeneration

	value := int(math.Round(math.Max(0, math.Min(100, total))))

	return &domain.Score{
		Symbol:         symbol,
		Value:          value,
		Recommendation: domain.RecommendationFor(value),
		Components:     components,
		Partial:        partial,
		ComputedAt:     s.clock(),
	}, nil
}

// subScore runs one scorer, substituting the neutral midpoint and marking
// the result partial when inputs were missing.
func (s *Service) subScore(partial *bool, calc func() (float64, bool)) float64 {
	v, ok := calc()
	if !ok {
		*partial = true
		return scorers.Neutral
	}
	return v
}
