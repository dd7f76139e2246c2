package voting

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govnode/internal/models"
)

func supportDecision(p *models.Proposal) models.VoteDecision {
	return models.VoteDecision{
		ProposalID: p.ID,
		Strategy:   "conservative",
		ShouldVote: true,
		Support:    true,
		Confidence: 0.8,
		Reasoning:  "test decision",
	}
}

func TestExecuteVotes(t *testing.T) {
	t.Run("strategy skip produces one record per wallet and no submissions", func(t *testing.T) {
		fc := &fakeChain{wallets: 5}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, models.VoteDecision{ShouldVote: false})
		require.Len(t, records, 5)
		for i, rec := range records {
			assert.Equal(t, i, rec.WalletIndex)
			assert.Equal(t, models.OutcomeSkippedByStrategy, rec.Outcome)
		}
		assert.Empty(t, fc.submitted())
	})

	t.Run("all wallets vote on a fresh proposal", func(t *testing.T) {
		fc := &fakeChain{wallets: 5}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, supportDecision(p))
		require.Len(t, records, 5)
		for _, rec := range records {
			assert.Equal(t, models.OutcomeSuccess, rec.Outcome)
			assert.NotEmpty(t, rec.TxHash)
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4}, fc.submitted())
	})

	t.Run("never submits for a wallet that already voted", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 5,
			hasVotedFn: func(ctx context.Context, proposalID uint64, walletIndex int) (bool, error) {
				return walletIndex == 1, nil
			},
		}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, supportDecision(p))
		require.Len(t, records, 5)
		assert.Equal(t, models.OutcomeAlreadyVoted, records[1].Outcome)
		assert.True(t, records[1].AlreadyVoted)
		assert.NotContains(t, fc.submitted(), 1)
	})

	t.Run("vote status timeout degrades one wallet without blocking the rest", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 5,
			hasVotedFn: func(ctx context.Context, proposalID uint64, walletIndex int) (bool, error) {
				if walletIndex == 2 {
					return false, fmt.Errorf("hasVoted: %w", context.DeadlineExceeded)
				}
				return false, nil
			},
		}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, supportDecision(p))
		require.Len(t, records, 5)
		assert.Equal(t, models.OutcomeTimeout, records[2].Outcome)
		assert.NotContains(t, fc.submitted(), 2)
		for _, i := range []int{0, 1, 3, 4} {
			assert.Equal(t, models.OutcomeSuccess, records[i].Outcome, "wallet %d", i)
		}
	})

	t.Run("submission timeout is recorded as timeout", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 2,
			submitFn: func(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
				if walletIndex == 0 {
					return "", fmt.Errorf("waiting for receipt: %w", context.DeadlineExceeded)
				}
				return "0xabc", nil
			},
		}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, supportDecision(p))
		require.Len(t, records, 2)
		assert.Equal(t, models.OutcomeTimeout, records[0].Outcome)
		assert.Equal(t, models.OutcomeSuccess, records[1].Outcome)
	})

	t.Run("one wallet erroring never blocks the others", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 3,
			submitFn: func(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
				if walletIndex == 1 {
					return "", fmt.Errorf("nonce too low")
				}
				return fmt.Sprintf("0xtx%d", walletIndex), nil
			},
		}
		exec := newTestExecutor(fc)
		p := testProposal(1)

		records := exec.ExecuteVotes(context.Background(), p, supportDecision(p))
		require.Len(t, records, 3)
		assert.Equal(t, models.OutcomeSuccess, records[0].Outcome)
		assert.Equal(t, models.OutcomeError, records[1].Outcome)
		assert.Contains(t, records[1].Error, "nonce too low")
		assert.Equal(t, models.OutcomeSuccess, records[2].Outcome)
	})
}
