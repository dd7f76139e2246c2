package models

// VoteOutcome classifies what happened to one wallet's vote attempt.
type VoteOutcome string

const (
	OutcomeSuccess           VoteOutcome = "success"
	OutcomeAlreadyVoted      VoteOutcome = "already_voted"
	OutcomeSkippedByStrategy VoteOutcome = "skipped_by_strategy"
	OutcomeTimeout           VoteOutcome = "timeout"
	OutcomeError             VoteOutcome = "error"
)

// WalletVoteRecord records the per-wallet result of a vote execution.
// At most one SUCCESS per (proposal, wallet) — the contract enforces this;
// the executor only avoids redundant submissions.
type WalletVoteRecord struct {
	WalletIndex  int         `json:"wallet_index"`
	AlreadyVoted bool        `json:"already_voted"`
	TxHash       string      `json:"tx_hash,omitempty"`
	Outcome      VoteOutcome `json:"outcome"`
	Error        string      `json:"error,omitempty"`
}
