package voting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"govnode/internal/models"
)

// fakeChain is a scriptable ChainService for pipeline tests. Function
// fields override individual behaviors; unset fields use benign defaults.
type fakeChain struct {
	mu sync.Mutex

	wallets    int
	countFn    func(ctx context.Context) (uint64, error)
	proposalFn func(ctx context.Context, id uint64) (*models.Proposal, error)
	hasVotedFn func(ctx context.Context, proposalID uint64, walletIndex int) (bool, error)
	submitFn   func(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error)

	fetchedIDs       []uint64
	submittedWallets []int
}

func (f *fakeChain) ProposalCount(ctx context.Context) (uint64, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return 0, nil
}

func (f *fakeChain) ProposalByID(ctx context.Context, id uint64) (*models.Proposal, error) {
	f.mu.Lock()
	f.fetchedIDs = append(f.fetchedIDs, id)
	f.mu.Unlock()
	if f.proposalFn != nil {
		return f.proposalFn(ctx, id)
	}
	return nil, fmt.Errorf("no proposal %d", id)
}

func (f *fakeChain) HasVoted(ctx context.Context, proposalID uint64, walletIndex int) (bool, error) {
	if f.hasVotedFn != nil {
		return f.hasVotedFn(ctx, proposalID, walletIndex)
	}
	return false, nil
}

func (f *fakeChain) SubmitVote(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
	f.mu.Lock()
	f.submittedWallets = append(f.submittedWallets, walletIndex)
	f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(ctx, walletIndex, proposalID, support)
	}
	return fmt.Sprintf("0xtx%d", walletIndex), nil
}

func (f *fakeChain) WalletCount() int {
	if f.wallets == 0 {
		return 5
	}
	return f.wallets
}

func (f *fakeChain) submitted() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.submittedWallets))
	copy(out, f.submittedWallets)
	return out
}

func (f *fakeChain) fetched() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.fetchedIDs))
	copy(out, f.fetchedIDs)
	return out
}

// testProposal builds a votable INVEST proposal; tests tweak fields as
// needed.
func testProposal(id uint64) *models.Proposal {
	now := time.Now().Unix()
	return &models.Proposal{
		ID:           id,
		Proposer:     "0x1111111111111111111111111111111111111111",
		ProposalType: models.ProposalTypeInvest,
		AssetAddress: "0x2222222222222222222222222222222222222222",
		Amount:       "500",
		Description:  "Fund the treasury diversification plan",
		VotesFor:     "0",
		VotesAgainst: "0",
		StartTime:    now - 3600,
		EndTime:      now + 3600,
		State:        models.StateActive,
	}
}

func newTestReader(chain ChainService, windowSize int) *ProposalReader {
	return &ProposalReader{
		chain:       chain,
		windowSize:  windowSize,
		itemTimeout: time.Second,
		readBudget:  5 * time.Second,
	}
}

func newTestExecutor(chain ChainService) *VoteExecutor {
	return &VoteExecutor{
		chain:        chain,
		checkTimeout: 100 * time.Millisecond,
		voteTimeout:  100 * time.Millisecond,
	}
}
