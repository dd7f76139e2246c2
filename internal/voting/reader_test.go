package voting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govnode/internal/models"
)

func TestListActive(t *testing.T) {
	t.Run("returns votable proposals from window", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 3, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				return testProposal(id), nil
			},
		}
		reader := newTestReader(fc, 10)

		active := reader.ListActive(context.Background())
		require.Len(t, active, 3)
		assert.Equal(t, uint64(1), active[0].ID)
		assert.Equal(t, uint64(3), active[2].ID)
	})

	t.Run("window counts backward from latest index", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 100, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				return testProposal(id), nil
			},
		}
		reader := newTestReader(fc, 10)

		active := reader.ListActive(context.Background())
		require.Len(t, active, 10)
		fetched := fc.fetched()
		assert.Equal(t, uint64(91), fetched[0])
		assert.Equal(t, uint64(100), fetched[len(fetched)-1])
	})

	t.Run("normalizes millisecond timestamps", func(t *testing.T) {
		endSeconds := time.Now().Unix() + 3600
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 1, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				p.StartTime = (endSeconds - 7200) * 1000
				p.EndTime = endSeconds * 1000
				return p, nil
			},
		}
		reader := newTestReader(fc, 10)

		active := reader.ListActive(context.Background())
		require.Len(t, active, 1)
		assert.Equal(t, endSeconds, active[0].EndTime)
		assert.Equal(t, endSeconds-7200, active[0].StartTime)
	})

	t.Run("excludes active proposal with end time in the past", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 1, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				p.EndTime = time.Now().Unix() - 1
				return p, nil
			},
		}
		reader := newTestReader(fc, 10)

		assert.Empty(t, reader.ListActive(context.Background()))
	})

	t.Run("excludes non-active states", func(t *testing.T) {
		states := []models.ProposalState{
			models.StatePending, models.StateSucceeded, models.StateDefeated,
			models.StateQueued, models.StateExecuted, models.StateCancelled,
		}
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return uint64(len(states)), nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				p := testProposal(id)
				p.State = states[id-1]
				return p, nil
			},
		}
		reader := newTestReader(fc, 10)

		assert.Empty(t, reader.ListActive(context.Background()))
	})

	t.Run("count failure yields empty result", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 0, fmt.Errorf("rpc down") },
		}
		reader := newTestReader(fc, 10)

		assert.Empty(t, reader.ListActive(context.Background()))
		assert.Empty(t, fc.fetched())
	})

	t.Run("single fetch failure does not abort the scan", func(t *testing.T) {
		fc := &fakeChain{
			countFn: func(ctx context.Context) (uint64, error) { return 3, nil },
			proposalFn: func(ctx context.Context, id uint64) (*models.Proposal, error) {
				if id == 2 {
					return nil, fmt.Errorf("malformed proposal")
				}
				return testProposal(id), nil
			},
		}
		reader := newTestReader(fc, 10)

		active := reader.ListActive(context.Background())
		require.Len(t, active, 2)
		assert.Equal(t, uint64(1), active[0].ID)
		assert.Equal(t, uint64(3), active[1].ID)
	})
}
