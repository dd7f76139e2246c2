package models

import (
	"strings"
	"time"
)

// ProposalType enumerates the asset actions a proposal can request.
type ProposalType uint8

const (
	ProposalTypeInvest ProposalType = iota
	ProposalTypeDivest
	ProposalTypeRebalance
)

func (t ProposalType) String() string {
	switch t {
	case ProposalTypeInvest:
		return "invest"
	case ProposalTypeDivest:
		return "divest"
	case ProposalTypeRebalance:
		return "rebalance"
	default:
		return "unknown"
	}
}

// ProposalState mirrors the on-chain lifecycle enum.
type ProposalState uint8

const (
	StatePending ProposalState = iota
	StateActive
	StateSucceeded
	StateDefeated
	StateQueued
	StateExecuted
	StateCancelled
)

func (s ProposalState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateSucceeded:
		return "succeeded"
	case StateDefeated:
		return "defeated"
	case StateQueued:
		return "queued"
	case StateExecuted:
		return "executed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MillisecondThreshold separates second-encoded from millisecond-encoded
// on-chain timestamps: anything above it (the year 2030 in seconds) is
// treated as milliseconds. Second-encoded timestamps past 2030 would be
// misclassified; the contract is not expected to outlive that boundary
// with the current encoding.
const MillisecondThreshold = 1893456000

// NormalizeTimestamp converts a raw on-chain timestamp to UNIX seconds.
// Idempotent for already-normalized values.
func NormalizeTimestamp(raw int64) int64 {
	if raw > MillisecondThreshold {
		return raw / 1000
	}
	return raw
}

// ZeroAddress is the zero-value EVM address, used to reject proposals
// without a real asset target.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Proposal is a read-only snapshot of one on-chain governance item.
// Amounts and vote tallies are decimal strings in token units; the wei
// conversion happens once at the chain ingestion boundary.
type Proposal struct {
	ID           uint64        `json:"id"`
	Proposer     string        `json:"proposer"`
	ProposalType ProposalType  `json:"proposal_type"`
	AssetAddress string        `json:"asset_address"`
	Amount       string        `json:"amount"`
	Description  string        `json:"description"`
	VotesFor     string        `json:"votes_for"`
	VotesAgainst string        `json:"votes_against"`
	StartTime    int64         `json:"start_time"`
	EndTime      int64         `json:"end_time"`
	State        ProposalState `json:"state"`
	Executed     bool          `json:"executed"`
	Cancelled    bool          `json:"cancelled"`
}

// TimeLeft returns the remaining voting window. Negative once expired.
func (p *Proposal) TimeLeft(now time.Time) time.Duration {
	return time.Duration(p.EndTime-now.Unix()) * time.Second
}

// Votable reports whether the proposal can still receive votes.
func (p *Proposal) Votable(now time.Time) bool {
	return p.State == StateActive && !p.Executed && !p.Cancelled && p.EndTime > now.Unix()
}

var stableTickers = []string{"USDC", "USDT", "DAI", "BUSD"}

var growthTickers = []string{"ETH", "WETH", "WBTC", "LINK", "UNI", "AAVE", "ARB", "MATIC"}

// knownTickers is the lookup order for MentionedTicker. Longer symbols come
// first so "WETH" is not matched as "ETH".
var knownTickers = []string{
	"USDC", "USDT", "BUSD", "DAI",
	"WETH", "WBTC", "LINK", "AAVE", "MATIC",
	"ARB", "UNI", "ETH", "BTC",
}

// IsStableAsset reports whether the description mentions a fiat-pegged
// ticker. Stable proposals get looser amount bounds and count as lower
// risk in every strategy.
func (p *Proposal) IsStableAsset() bool {
	desc := strings.ToUpper(p.Description)
	for _, ticker := range stableTickers {
		if strings.Contains(desc, ticker) {
			return true
		}
	}
	return false
}

// IsGrowthAsset reports whether the description mentions a ticker from the
// high-growth classification used by the aggressive strategy.
func (p *Proposal) IsGrowthAsset() bool {
	desc := strings.ToUpper(p.Description)
	for _, ticker := range growthTickers {
		if strings.Contains(desc, ticker) {
			return true
		}
	}
	return false
}

// MentionedTicker returns the first known asset ticker found in the
// description, or "" when none matches.
func (p *Proposal) MentionedTicker() string {
	desc := strings.ToUpper(p.Description)
	for _, ticker := range knownTickers {
		if strings.Contains(desc, ticker) {
			return ticker
		}
	}
	return ""
}
