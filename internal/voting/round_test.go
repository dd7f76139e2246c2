package voting

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govnode/internal/models"
)

// stubStrategy lets round tests script decisions without the real heuristics.
type stubStrategy struct {
	name string
	fn   func(p *models.Proposal) models.VoteDecision
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Decide(p *models.Proposal, _ *models.MarketSnapshot) models.VoteDecision {
	if s.fn != nil {
		return s.fn(p)
	}
	return supportDecision(p)
}

func newTestRound(fc *fakeChain, strategy Strategy, cfg RoundConfig) *VotingRound {
	return NewVotingRound(fc, newTestReader(fc, 10), strategy, newTestExecutor(fc), nil, cfg)
}

func TestVotingRound(t *testing.T) {
	t.Run("no active proposals ends clean", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 0, nil },
		}
		round := newTestRound(fc, &stubStrategy{name: "test"}, DefaultRoundConfig())

		summary := round.Run(context.Background())
		require.NotNil(t, summary)
		assert.Equal(t, models.RoundDone, summary.State)
		assert.Zero(t, summary.ProposalsProcessed)
		assert.Zero(t, summary.VotesCast)
		assert.Zero(t, summary.Errors)
	})

	t.Run("health check failure aborts before any fetch", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 0, fmt.Errorf("connection refused") },
		}
		round := newTestRound(fc, &stubStrategy{name: "test"}, DefaultRoundConfig())

		summary := round.Run(context.Background())
		assert.Equal(t, models.RoundFailed, summary.State)
		assert.Contains(t, summary.Error, "health check failed")
		assert.Empty(t, fc.fetched())
	})

	t.Run("full round casts one vote per wallet per proposal", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 3,
			countFn: func(ctx context.Context) (uint64, error) { return 2, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				return testProposal(id), nil
			},
		}
		round := newTestRound(fc, &stubStrategy{name: "test"}, DefaultRoundConfig())

		summary := round.Run(context.Background())
		assert.Equal(t, models.RoundDone, summary.State)
		assert.Equal(t, 2, summary.ProposalsProcessed)
		assert.Equal(t, 6, summary.VotesCast)
		assert.Zero(t, summary.Errors)
		require.Len(t, summary.VoteRecords, 2)
		assert.Len(t, summary.Decisions, 2)
	})

	t.Run("panicking strategy degrades to abstention", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 2,
			countFn: func(ctx context.Context) (uint64, error) { return 2, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				return testProposal(id), nil
			},
		}
		strategy := &stubStrategy{
			name: "test",
			fn: func(p *models.Proposal) models.VoteDecision {
				if p.ID == 2 {
					panic("nil snapshot field")
				}
				return supportDecision(p)
			},
		}
		round := newTestRound(fc, strategy, DefaultRoundConfig())

		summary := round.Run(context.Background())
		assert.Equal(t, models.RoundDone, summary.State)
		assert.Equal(t, 2, summary.ProposalsProcessed)

		var failed *models.VoteDecision
		for i := range summary.Decisions {
			if summary.Decisions[i].ProposalID == 2 {
				failed = &summary.Decisions[i]
			}
		}
		require.NotNil(t, failed)
		assert.False(t, failed.ShouldVote)
		assert.Equal(t, "analysis failed", failed.Reasoning)

		// The healthy proposal still executed.
		assert.Equal(t, 2, summary.VotesCast)
		for _, rec := range summary.VoteRecords[2] {
			assert.Equal(t, models.OutcomeSkippedByStrategy, rec.Outcome)
		}
	})

	t.Run("stable asset proposals execute first", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 1,
			countFn: func(ctx context.Context) (uint64, error) { return 2, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				if id == 2 {
					p.Amount = "50"
					p.Description = "Top up the USDC reserve buffer"
				} else {
					p.Amount = "9000"
				}
				return p, nil
			},
		}
		round := newTestRound(fc, &stubStrategy{name: "test"}, DefaultRoundConfig())

		summary := round.Run(context.Background())
		require.Len(t, summary.Decisions, 2)
		assert.Equal(t, uint64(2), summary.Decisions[0].ProposalID, "stable proposal ordered first despite smaller amount")
		assert.Equal(t, uint64(1), summary.Decisions[1].ProposalID)
	})

	t.Run("proposal cap truncates after prioritization", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 1,
			countFn: func(ctx context.Context) (uint64, error) { return 5, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				p.Amount = fmt.Sprintf("%d", id*100)
				return p, nil
			},
		}
		cfg := DefaultRoundConfig()
		cfg.MaxProposals = 2
		round := newTestRound(fc, &stubStrategy{name: "test"}, cfg)

		summary := round.Run(context.Background())
		assert.Equal(t, 2, summary.ProposalsProcessed)
		require.Len(t, summary.Decisions, 2)
		// Largest amounts survive the cut.
		assert.Equal(t, uint64(5), summary.Decisions[0].ProposalID)
		assert.Equal(t, uint64(4), summary.Decisions[1].ProposalID)
	})

	t.Run("budget exhaustion stops execution but still reports", func(t *testing.T) {
		fc := &fakeChain{
			wallets: 2,
			countFn: func(ctx context.Context) (uint64, error) { return 3, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				p.Amount = fmt.Sprintf("%d", (4-id)*100) // keep execution order 1,2,3
				return p, nil
			},
			submitFn: func(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
				time.Sleep(40 * time.Millisecond)
				return "0xabc", nil
			},
		}
		cfg := DefaultRoundConfig()
		cfg.Budget = 50 * time.Millisecond
		round := newTestRound(fc, &stubStrategy{name: "test"}, cfg)

		summary := round.Run(context.Background())
		require.NotNil(t, summary)
		assert.Equal(t, 3, summary.ProposalsProcessed, "all proposals decided before the budget hit")
		assert.Less(t, len(summary.VoteRecords), 3, "at least the tail proposal was skipped")
		assert.NotContains(t, summary.VoteRecords, uint64(3))
	})
}

type fakePublisher struct {
	mu       sync.Mutex
	queues   []string
	payloads []interface{}
	err      error
}

func (f *fakePublisher) Publish(queueName string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues = append(f.queues, queueName)
	f.payloads = append(f.payloads, message)
	return f.err
}

func TestNode(t *testing.T) {
	newChain := func() *fakeChain {
		return &fakeChain{
			wallets: 1,
			countFn: func(ctx context.Context) (uint64, error) { return 1, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				return testProposal(id), nil
			},
		}
	}

	t.Run("publishes the summary after each round", func(t *testing.T) {
		pub := &fakePublisher{}
		node := NewNode(newTestRound(newChain(), &stubStrategy{name: "test"}, DefaultRoundConfig()), "test", pub)

		summary := node.RunRound(context.Background())
		require.NotNil(t, summary)
		require.Len(t, pub.queues, 1)
		assert.Equal(t, SummaryQueue, pub.queues[0])
		assert.Same(t, summary, pub.payloads[0])
		assert.Equal(t, summary, node.LastSummary())
		assert.False(t, node.Running())
		assert.WithinDuration(t, time.Now(), node.LastRunAt(), time.Second)
	})

	t.Run("publish failure does not fail the round", func(t *testing.T) {
		pub := &fakePublisher{err: fmt.Errorf("broker gone")}
		node := NewNode(newTestRound(newChain(), &stubStrategy{name: "test"}, DefaultRoundConfig()), "test", pub)

		summary := node.RunRound(context.Background())
		require.NotNil(t, summary)
		assert.Equal(t, models.RoundDone, summary.State)
	})

	t.Run("concurrent trigger is skipped while a round runs", func(t *testing.T) {
		fc := newChain()
		started := make(chan struct{})
		release := make(chan struct{})
		fc.submitFn = func(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
			close(started)
			<-release
			return "0xabc", nil
		}
		node := NewNode(newTestRound(fc, &stubStrategy{name: "test"}, DefaultRoundConfig()), "test", nil)

		done := make(chan *models.RoundSummary, 1)
		go func() { done <- node.RunRound(context.Background()) }()
		<-started

		assert.True(t, node.Running())
		assert.Nil(t, node.RunRound(context.Background()), "overlapping trigger returns the previous summary, nil before the first round")

		close(release)
		summary := <-done
		require.NotNil(t, summary)
		assert.Equal(t, summary, node.LastSummary())
	})
}
