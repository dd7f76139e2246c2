package voting

import (
	"context"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// Reader timing defaults. The inter-fetch delay keeps a burst of
// getProposal calls from tripping provider rate limits.
const (
	defaultFetchDelay  = 200 * time.Millisecond
	defaultItemTimeout = 5 * time.Second
	defaultReadBudget  = 30 * time.Second
)

// ProposalReader scans the tail of the on-chain proposal list and returns
// the proposals that can still be voted on. It is the only place raw
// timestamps get normalized; everything downstream sees UNIX seconds.
type ProposalReader struct {
	chain       ChainService
	windowSize  int
	fetchDelay  time.Duration
	itemTimeout time.Duration
	readBudget  time.Duration
}

// NewProposalReader creates a reader inspecting at most windowSize proposals
// counted backward from the latest index.
func NewProposalReader(chain ChainService, windowSize int) *ProposalReader {
	if windowSize < 1 {
		windowSize = 1
	}
	return &ProposalReader{
		chain:       chain,
		windowSize:  windowSize,
		fetchDelay:  defaultFetchDelay,
		itemTimeout: defaultItemTimeout,
		readBudget:  defaultReadBudget,
	}
}

// ListActive returns all votable proposals inside the window. Degraded
// conditions (count query failure, exhausted read budget) yield an empty
// result rather than an error — "no active proposals" is the safe default.
// A single proposal's fetch failure only skips that proposal.
func (r *ProposalReader) ListActive(ctx context.Context) []*models.Proposal {
	ctx, cancel := context.WithTimeout(ctx, r.readBudget)
	defer cancel()

	countCtx, countCancel := context.WithTimeout(ctx, r.itemTimeout)
	total, err := r.chain.ProposalCount(countCtx)
	countCancel()
	if err != nil {
		logrus.Warnf("Proposal count query failed, treating as no active proposals: %v", err)
		return nil
	}
	if total == 0 {
		return nil
	}

	startFrom := uint64(1)
	if total > uint64(r.windowSize) {
		startFrom = total - uint64(r.windowSize) + 1
	}

	var active []*models.Proposal
	now := time.Now()
	for id := startFrom; id <= total; id++ {
		if ctx.Err() != nil {
			logrus.Warnf("Proposal read budget exhausted at id %d, returning empty result", id)
			return nil
		}

		itemCtx, itemCancel := context.WithTimeout(ctx, r.itemTimeout)
		p, err := r.chain.ProposalByID(itemCtx, id)
		itemCancel()
		if err != nil {
			logrus.Warnf("Failed to fetch proposal %d, skipping: %v", id, err)
			continue
		}

		p.StartTime = models.NormalizeTimestamp(p.StartTime)
		p.EndTime = models.NormalizeTimestamp(p.EndTime)

		if p.Votable(now) {
			logrus.WithFields(logrus.Fields{
				"proposal_id": p.ID,
				"type":        p.ProposalType.String(),
				"amount":      p.Amount,
				"time_left":   p.TimeLeft(now).String(),
			}).Info("Found active proposal")
			active = append(active, p)
		}

		if id < total && r.fetchDelay > 0 {
			time.Sleep(r.fetchDelay)
		}
	}
	return active
}
