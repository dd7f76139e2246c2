package voting

import (
	"context"
	"errors"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// Executor timing defaults. The status check is a cheap read; the vote
// timeout must cover on-chain confirmation. The inter-wallet delay keeps
// five back-to-back submissions from tripping RPC rate limits.
const (
	defaultCheckTimeout = 3 * time.Second
	defaultVoteTimeout  = 20 * time.Second
	defaultWalletDelay  = 2 * time.Second
)

// VoteExecutor casts one decision from every configured wallet. Wallets are
// processed sequentially and independently: one wallet failing, timing out
// or having voted already never blocks the others.
type VoteExecutor struct {
	chain        ChainService
	checkTimeout time.Duration
	voteTimeout  time.Duration
	walletDelay  time.Duration
}

func NewVoteExecutor(chain ChainService) *VoteExecutor {
	return &VoteExecutor{
		chain:        chain,
		checkTimeout: defaultCheckTimeout,
		voteTimeout:  defaultVoteTimeout,
		walletDelay:  defaultWalletDelay,
	}
}

// ExecuteVotes applies the decision for one proposal across all wallets and
// returns one record per wallet, in wallet order.
func (e *VoteExecutor) ExecuteVotes(ctx context.Context, p *models.Proposal, d models.VoteDecision) []models.WalletVoteRecord {
	walletCount := e.chain.WalletCount()
	records := make([]models.WalletVoteRecord, 0, walletCount)

	if !d.ShouldVote {
		for i := 0; i < walletCount; i++ {
			records = append(records, models.WalletVoteRecord{
				WalletIndex: i,
				Outcome:     models.OutcomeSkippedByStrategy,
			})
		}
		logrus.Infof("Proposal %d skipped by strategy for all %d wallets: %s", p.ID, walletCount, d.Reasoning)
		return records
	}

	for i := 0; i < walletCount; i++ {
		records = append(records, e.voteWithWallet(ctx, p, d, i))

		if i < walletCount-1 && e.walletDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(e.walletDelay):
			}
		}
	}
	return records
}

// voteWithWallet runs the full check-then-submit sequence for one wallet.
// When the prior-vote check itself times out the wallet is skipped rather
// than risking a duplicate submission the contract would reject anyway; the
// next scheduled round retries it.
func (e *VoteExecutor) voteWithWallet(ctx context.Context, p *models.Proposal, d models.VoteDecision, walletIndex int) models.WalletVoteRecord {
	rec := models.WalletVoteRecord{WalletIndex: walletIndex}

	checkCtx, checkCancel := context.WithTimeout(ctx, e.checkTimeout)
	voted, err := e.chain.HasVoted(checkCtx, p.ID, walletIndex)
	checkCancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			rec.Outcome = models.OutcomeTimeout
			rec.Error = "vote status check timed out"
			logrus.Warnf("Wallet %d: hasVoted check for proposal %d timed out, skipping wallet", walletIndex, p.ID)
		} else {
			rec.Outcome = models.OutcomeError
			rec.Error = err.Error()
			logrus.Warnf("Wallet %d: hasVoted check for proposal %d failed, skipping wallet: %v", walletIndex, p.ID, err)
		}
		return rec
	}
	if voted {
		rec.AlreadyVoted = true
		rec.Outcome = models.OutcomeAlreadyVoted
		logrus.Infof("Wallet %d already voted on proposal %d", walletIndex, p.ID)
		return rec
	}

	voteCtx, voteCancel := context.WithTimeout(ctx, e.voteTimeout)
	txHash, err := e.chain.SubmitVote(voteCtx, walletIndex, p.ID, d.Support)
	voteCancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// The transaction may still land on-chain; we only stop waiting.
			// No retry within this round.
			rec.Outcome = models.OutcomeTimeout
			rec.Error = "vote submission timed out"
			logrus.Warnf("Wallet %d: vote on proposal %d timed out", walletIndex, p.ID)
		} else {
			rec.Outcome = models.OutcomeError
			rec.Error = err.Error()
			logrus.Errorf("Wallet %d: vote on proposal %d failed: %v", walletIndex, p.ID, err)
		}
		return rec
	}

	rec.Outcome = models.OutcomeSuccess
	rec.TxHash = txHash
	logrus.WithFields(logrus.Fields{
		"proposal_id":  p.ID,
		"wallet_index": walletIndex,
		"support":      d.Support,
		"tx_hash":      txHash,
	}).Info("Vote cast")
	return rec
}
