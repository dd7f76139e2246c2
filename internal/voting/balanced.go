package voting

import (
	"fmt"
	"time"

	"govnode/internal/models"
)

// BalancedStrategy sits midway between conservative and aggressive: same
// eligibility and scoring primitives, thresholds interpolated between the
// two outer variants.
type BalancedStrategy struct {
	cfg models.StrategyConfig
}

func NewBalancedStrategy() *BalancedStrategy {
	return &BalancedStrategy{cfg: models.StrategyConfig{
		RiskTolerance:            0.55,
		MaxPositionSize:          0.25,
		DiversificationThreshold: 0.5,
		RebalanceThreshold:       0.175,
		MaxAmount:                3000,
		MaxMarketRisk:            0.7,
		MarketConditionWeights:   models.MarketWeights{Trending: 0.4, Volatility: 0.4, Volume: 0.2},
	}}
}

func (s *BalancedStrategy) Name() string { return "balanced" }

func (s *BalancedStrategy) Decide(p *models.Proposal, snapshot *models.MarketSnapshot) models.VoteDecision {
	now := time.Now()
	if reason, ok := validateProposal(p, now); !ok {
		return newDecision(s.Name(), p, false, false, 0, reason)
	}

	amount, _ := parseNonNegative(p.Amount)
	risk := riskScore(p, snapshot)
	m := classifyMomentum(p)

	var (
		shouldVote bool
		support    bool
		confidence float64
		reasoning  string
	)

	switch {
	case amount > s.cfg.MaxAmount:
		shouldVote, support, confidence = true, false, 0.65
		reasoning = fmt.Sprintf("amount %s exceeds balanced limit of %.0f", p.Amount, s.cfg.MaxAmount)
	case risk > s.cfg.RiskTolerance:
		shouldVote, support, confidence = true, false, 0.65
		reasoning = fmt.Sprintf("risk score %.2f exceeds balanced tolerance %.2f", risk, s.cfg.RiskTolerance)
	case snapshot != nil && snapshot.RiskScore > s.cfg.MaxMarketRisk:
		shouldVote, support, confidence = true, false, 0.65
		reasoning = fmt.Sprintf("market risk %.2f above balanced ceiling %.2f", snapshot.RiskScore, s.cfg.MaxMarketRisk)
	case p.ProposalType == models.ProposalTypeInvest && p.IsStableAsset():
		shouldVote, support, confidence = true, true, 0.7
		reasoning = "stable asset investment within balanced limits"
	case p.ProposalType == models.ProposalTypeInvest && p.IsGrowthAsset() && marketAligned(p, snapshot):
		shouldVote, support, confidence = true, true, 0.6
		reasoning = "growth asset investment aligned with market recommendation"
	case p.ProposalType == models.ProposalTypeDivest &&
		((snapshot != nil && snapshot.RiskScore > 0.65) ||
			snapshot.Recommendation(p.MentionedTicker()) == models.ActionSell):
		shouldVote, support, confidence = true, true, 0.65
		reasoning = "divestment supported by market risk or downtrend"
	case marketAligned(p, snapshot) && m.supportRatio >= 0.4:
		shouldVote, support, confidence = true, true, 0.55
		reasoning = fmt.Sprintf("moderate risk (%.2f), market aligned, no opposing momentum", risk)
	default:
		return newDecision(s.Name(), p, false, false, 0,
			"no balanced signal: neither risk limits breached nor support case met")
	}

	if lastMinute(p, now) {
		confidence *= 0.9
		reasoning += "; reduced confidence for last-minute decision"
	}
	confidence = clamp(confidence, 0.1, 0.9)

	return newDecision(s.Name(), p, shouldVote, support, confidence, reasoning)
}
