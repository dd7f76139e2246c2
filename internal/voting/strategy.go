package voting

import (
	"fmt"
	"strconv"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// Strategy maps a proposal plus an optional market snapshot to a vote
// decision. Implementations must be deterministic for a given input and
// must never panic past Decide (the round guards against it anyway).
type Strategy interface {
	Name() string
	Decide(p *models.Proposal, snapshot *models.MarketSnapshot) models.VoteDecision
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "conservative":
		return NewConservativeStrategy(), nil
	case "aggressive":
		return NewAggressiveStrategy(), nil
	case "balanced":
		return NewBalancedStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown voting strategy: %s", name)
	}
}

// Amount bounds in token units. Stable-asset proposals get a looser band.
const (
	minAmountGeneric = 0.01
	maxAmountGeneric = 100000
	minAmountStable  = 0.001
	maxAmountStable  = 500000

	minDescriptionLen = 10
)

// validateProposal runs the eligibility pre-checks shared by all strategy
// variants. Returns ok=false with a reason when the proposal must not be
// voted on regardless of strategy.
func validateProposal(p *models.Proposal, now time.Time) (string, bool) {
	if p.State != models.StateActive {
		return fmt.Sprintf("proposal state is %s, not active", p.State), false
	}
	if p.EndTime > 0 && now.Unix() > p.EndTime {
		return "voting window has closed", false
	}
	if p.Executed {
		return "proposal already executed", false
	}
	if p.Cancelled {
		return "proposal cancelled", false
	}
	if len(p.Description) < minDescriptionLen {
		return "description missing or too short", false
	}
	if p.AssetAddress == "" || p.AssetAddress == models.ZeroAddress {
		return "asset address is the zero address", false
	}

	amount, err := parseNonNegative(p.Amount)
	if err != nil {
		return fmt.Sprintf("invalid amount %q", p.Amount), false
	}
	lo, hi := minAmountGeneric, float64(maxAmountGeneric)
	if p.IsStableAsset() {
		lo, hi = minAmountStable, maxAmountStable
	}
	if amount < lo || amount > hi {
		return fmt.Sprintf("amount %s outside allowed range [%g, %g]", p.Amount, lo, hi), false
	}

	if _, err := parseNonNegative(p.VotesFor); err != nil {
		return fmt.Sprintf("invalid votesFor %q", p.VotesFor), false
	}
	if _, err := parseNonNegative(p.VotesAgainst); err != nil {
		return fmt.Sprintf("invalid votesAgainst %q", p.VotesAgainst), false
	}
	return "", true
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %s", s)
	}
	return v, nil
}

// riskScore computes the shared heuristic risk score in [0,1]. Base 0.5,
// nudged by amount, proposal type, market risk and current vote support.
func riskScore(p *models.Proposal, snapshot *models.MarketSnapshot) float64 {
	score := 0.5

	amount, err := parseNonNegative(p.Amount)
	if err == nil {
		if amount > 1000 {
			score += 0.2
		} else if amount < 10 {
			score -= 0.1
		}
	}

	switch p.ProposalType {
	case models.ProposalTypeInvest:
		score += 0.1
	case models.ProposalTypeDivest:
		score -= 0.1
	case models.ProposalTypeRebalance:
		score += 0.05
	}

	if snapshot != nil {
		score += snapshot.RiskScore * 0.3
	}

	m := classifyMomentum(p)
	if m.totalVotes > 0 && m.supportRatio < 0.3 {
		score += 0.2
	}

	return clamp(score, 0, 1)
}

// Voting activity levels by total vote weight.
const (
	activityLow    = "low"    // <= 100
	activityMedium = "medium" // <= 1000
	activityHigh   = "high"   // > 1000
)

type momentum struct {
	totalVotes   float64
	supportRatio float64
	activity     string
}

// classifyMomentum summarizes the current tally. Support ratio defaults to
// 0.5 when nobody has voted yet.
func classifyMomentum(p *models.Proposal) momentum {
	votesFor, _ := parseNonNegative(p.VotesFor)
	votesAgainst, _ := parseNonNegative(p.VotesAgainst)
	total := votesFor + votesAgainst

	m := momentum{totalVotes: total, supportRatio: 0.5}
	if total > 0 {
		m.supportRatio = votesFor / total
	}
	switch {
	case total <= 100:
		m.activity = activityLow
	case total <= 1000:
		m.activity = activityMedium
	default:
		m.activity = activityHigh
	}
	return m
}

// marketAligned reports whether the proposal's intended direction matches
// the snapshot recommendation for the mentioned asset. Missing data or no
// ticker match defaults to aligned — neutral, never a blocker.
func marketAligned(p *models.Proposal, snapshot *models.MarketSnapshot) bool {
	action := snapshot.Recommendation(p.MentionedTicker())
	if action == "" {
		return true
	}
	switch p.ProposalType {
	case models.ProposalTypeInvest:
		return action == models.ActionBuy
	case models.ProposalTypeDivest:
		return action == models.ActionSell
	case models.ProposalTypeRebalance:
		return action != models.ActionHold
	default:
		return true
	}
}

// detectStrongTrend returns the dominant recommendation direction when at
// least three recommendations share it with a two-vote margin over the
// opposite direction.
func detectStrongTrend(snapshot *models.MarketSnapshot) (string, bool) {
	if snapshot == nil {
		return "", false
	}
	var buys, sells int
	for _, action := range snapshot.Recommendations {
		switch action {
		case models.ActionBuy:
			buys++
		case models.ActionSell:
			sells++
		}
	}
	if buys >= 3 && buys-sells >= 2 {
		return models.ActionBuy, true
	}
	if sells >= 3 && sells-buys >= 2 {
		return models.ActionSell, true
	}
	return "", false
}

// lastMinute reports whether less than 10% of the voting window remains.
func lastMinute(p *models.Proposal, now time.Time) bool {
	if p.StartTime <= 0 || p.EndTime <= p.StartTime {
		return false
	}
	window := p.EndTime - p.StartTime
	remaining := p.EndTime - now.Unix()
	return remaining > 0 && remaining*10 < window
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// newDecision assembles the decision and writes the audit trail entry.
// Every strategy invocation goes through here exactly once.
func newDecision(strategy string, p *models.Proposal, shouldVote, support bool, confidence float64, reasoning string) models.VoteDecision {
	d := models.VoteDecision{
		ProposalID: p.ID,
		Strategy:   strategy,
		ShouldVote: shouldVote,
		Support:    support,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
	logrus.WithFields(logrus.Fields{
		"proposal_id": p.ID,
		"strategy":    strategy,
		"should_vote": shouldVote,
		"support":     support,
		"confidence":  confidence,
		"reasoning":   reasoning,
	}).Info("Strategy decision")
	return d
}
