package voting

import (
	"fmt"
	"time"

	"govnode/internal/models"
)

// AggressiveStrategy chases growth: high risk tolerance, larger position
// ceiling, momentum-following, and it treats elevated volatility as an
// opportunity rather than a blocker.
type AggressiveStrategy struct {
	cfg models.StrategyConfig
}

func NewAggressiveStrategy() *AggressiveStrategy {
	return &AggressiveStrategy{cfg: models.StrategyConfig{
		RiskTolerance:            0.8,
		MaxPositionSize:          0.4,
		DiversificationThreshold: 0.3,
		RebalanceThreshold:       0.25,
		MaxAmount:                5000,
		MaxMarketRisk:            0.9,
		MarketConditionWeights:   models.MarketWeights{Trending: 0.5, Volatility: 0.3, Volume: 0.2},
	}}
}

func (s *AggressiveStrategy) Name() string { return "aggressive" }

func (s *AggressiveStrategy) Decide(p *models.Proposal, snapshot *models.MarketSnapshot) models.VoteDecision {
	now := time.Now()
	if reason, ok := validateProposal(p, now); !ok {
		return newDecision(s.Name(), p, false, false, 0, reason)
	}

	amount, _ := parseNonNegative(p.Amount)
	risk := riskScore(p, snapshot)
	m := classifyMomentum(p)
	trendDir, strongTrend := detectStrongTrend(snapshot)

	var (
		shouldVote bool
		support    bool
		confidence float64
		reasoning  string
	)

	switch {
	case amount > s.cfg.MaxAmount:
		shouldVote, support, confidence = true, false, 0.6
		reasoning = fmt.Sprintf("amount %s exceeds aggressive limit of %.0f", p.Amount, s.cfg.MaxAmount)
	case risk > s.cfg.RiskTolerance:
		shouldVote, support, confidence = true, false, 0.6
		reasoning = fmt.Sprintf("risk score %.2f exceeds aggressive tolerance %.2f", risk, s.cfg.RiskTolerance)
	default:
		switch p.ProposalType {
		case models.ProposalTypeInvest:
			switch {
			case p.IsGrowthAsset():
				shouldVote, support, confidence = true, true, 0.7
				reasoning = "investment in high-growth asset"
			case strongTrend && trendDir == models.ActionBuy:
				shouldVote, support, confidence = true, true, 0.7
				reasoning = "investment aligned with strong market uptrend"
			case p.IsStableAsset():
				shouldVote, support, confidence = true, true, 0.4
				reasoning = "stable asset investment, low upside but acceptable"
			default:
				shouldVote, support, confidence = true, true, 0.5
				reasoning = fmt.Sprintf("speculative investment within tolerance (risk %.2f)", risk)
			}
		case models.ProposalTypeDivest:
			downtrend := snapshot.Recommendation(p.MentionedTicker()) == models.ActionSell
			if (snapshot != nil && snapshot.RiskScore > 0.8) || downtrend {
				shouldVote, support, confidence = true, true, 0.65
				reasoning = "divestment favored by extreme market risk or asset downtrend"
			} else {
				return newDecision(s.Name(), p, false, false, 0,
					"no aggressive divest signal: holding position")
			}
		case models.ProposalTypeRebalance:
			shouldVote, support, confidence = true, true, 0.5
			reasoning = "rebalance within aggressive tolerance"
		}
	}

	if shouldVote && support {
		// Momentum-following boost on busy proposals voting our way.
		if m.activity == activityHigh && (m.supportRatio >= 0.5) == support {
			confidence += 0.05
			reasoning += "; high-activity momentum"
		}
		// Volatility opportunity zone.
		if risk > 0.6 && risk < 0.8 {
			confidence += 0.05
			reasoning += "; volatility opportunity"
		}
		// Decisiveness near the window close instead of the conservative discount.
		if lastMinute(p, now) {
			confidence += 0.05
			reasoning += "; last-minute decisiveness"
		}
	}
	confidence = clamp(confidence, 0.1, 0.95)

	return newDecision(s.Name(), p, shouldVote, support, confidence, reasoning)
}
