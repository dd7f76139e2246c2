package voting

import (
	"fmt"
	"time"

	"govnode/internal/models"
)

// ConservativeStrategy votes cautiously: low risk tolerance, small position
// ceilings, and a preference for stable assets. Over-limit proposals get an
// oppose vote rather than an abstention.
type ConservativeStrategy struct {
	cfg models.StrategyConfig
}

func NewConservativeStrategy() *ConservativeStrategy {
	return &ConservativeStrategy{cfg: models.StrategyConfig{
		RiskTolerance:            0.3,
		MaxPositionSize:          0.1,
		DiversificationThreshold: 0.7,
		RebalanceThreshold:       0.1,
		MaxAmount:                1000,
		MaxMarketRisk:            0.6,
		MarketConditionWeights:   models.MarketWeights{Trending: 0.3, Volatility: 0.5, Volume: 0.2},
	}}
}

func (s *ConservativeStrategy) Name() string { return "conservative" }

func (s *ConservativeStrategy) Decide(p *models.Proposal, snapshot *models.MarketSnapshot) models.VoteDecision {
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
		shouldVote, support, confidence = true, false, 0.7
		reasoning = fmt.Sprintf("amount %s exceeds conservative limit of %.0f", p.Amount, s.cfg.MaxAmount)
	case risk > s.cfg.RiskTolerance:
		shouldVote, support, confidence = true, false, 0.7
		reasoning = fmt.Sprintf("risk score %.2f exceeds tolerance %.2f", risk, s.cfg.RiskTolerance)
	case snapshot != nil && snapshot.RiskScore > s.cfg.MaxMarketRisk:
		shouldVote, support, confidence = true, false, 0.7
		reasoning = fmt.Sprintf("market risk %.2f above conservative ceiling %.2f", snapshot.RiskScore, s.cfg.MaxMarketRisk)
	case p.ProposalType == models.ProposalTypeInvest && p.IsStableAsset():
		shouldVote, support, confidence = true, true, 0.8
		reasoning = "stable asset investment within conservative limits"
	case p.ProposalType == models.ProposalTypeDivest &&
		((snapshot != nil && snapshot.RiskScore > 0.5) || m.supportRatio >= 0.6):
		shouldVote, support, confidence = true, true, 0.7
		reasoning = "divestment favored by market risk or voting momentum"
	case marketAligned(p, snapshot):
		shouldVote, support, confidence = true, true, 0.6
		reasoning = fmt.Sprintf("low risk (%.2f) and market aligned", risk)
	default:
		return newDecision(s.Name(), p, false, false, 0,
			"no conservative signal: proposal misaligned with market recommendation")
	}

	if lastMinute(p, now) {
		confidence *= 0.8
		reasoning += "; reduced confidence for last-minute decision"
	}
	confidence = clamp(confidence, 0.1, 0.9)

	return newDecision(s.Name(), p, shouldVote, support, confidence, reasoning)
}
