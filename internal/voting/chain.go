package voting

import (
	"context"

	"govnode/internal/models"
)

// ChainService is the surface the voting pipeline needs from the chain
// layer. All methods honor context deadlines; a deadline error from any of
// them is treated as a transient RPC condition, never a round failure.
type ChainService interface {
	// ProposalCount returns the total on-chain proposal count (1-based ids).
	ProposalCount(ctx context.Context) (uint64, error)
	// ProposalByID fetches one proposal snapshot. Timestamps arrive raw
	// (seconds or milliseconds); the reader normalizes them.
	ProposalByID(ctx context.Context, id uint64) (*models.Proposal, error)
	// HasVoted reports whether the wallet at index already voted on the
	// proposal.
	HasVoted(ctx context.Context, proposalID uint64, walletIndex int) (bool, error)
	// SubmitVote signs and submits a vote from the wallet at index and
	// waits for confirmation. Returns the transaction hash.
	SubmitVote(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error)
	// WalletCount is the number of configured signing wallets.
	WalletCount() int
}

// MarketProvider supplies an optional market snapshot. A nil snapshot means
// no market data; strategies treat that as neutral.
type MarketProvider interface {
	Snapshot(ctx context.Context) *models.MarketSnapshot
}
