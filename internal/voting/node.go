package voting

import (
	"context"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// SummaryQueue is the RabbitMQ queue round summaries are published to when
// eventing is configured.
const SummaryQueue = "governance_round_results"

// EventPublisher pushes a JSON message to a named queue. Satisfied by the
// RabbitMQ publisher; nil disables eventing.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// Node is one governance node: a configured strategy wired to the shared
// round pipeline. It serializes rounds — no two rounds ever run
// concurrently against the same proposal set.
type Node struct {
	round     *VotingRound
	strategy  string
	publisher EventPublisher

	mu          sync.Mutex
	running     bool
	lastSummary *models.RoundSummary
	lastRunAt   time.Time
}

func NewNode(round *VotingRound, strategyName string, publisher EventPublisher) *Node {
	return &Node{round: round, strategy: strategyName, publisher: publisher}
}

// StrategyName returns the strategy this node votes with.
func (n *Node) StrategyName() string { return n.strategy }

// RunRound executes one voting round. If a round is already in flight the
// call is skipped and the previous summary returned, so overlapping cron
// ticks and manual triggers cannot race.
func (n *Node) RunRound(ctx context.Context) *models.RoundSummary {
	n.mu.Lock()
	if n.running {
		last := n.lastSummary
		n.mu.Unlock()
		logrus.Warn("Voting round already in progress, skipping trigger")
		return last
	}
	n.running = true
	n.mu.Unlock()

	summary := n.round.Run(ctx)

	n.mu.Lock()
	n.running = false
	n.lastSummary = summary
	n.lastRunAt = time.Now()
	n.mu.Unlock()

	if n.publisher != nil {
		if err := n.publisher.Publish(SummaryQueue, summary); err != nil {
			logrus.Warnf("Failed to publish round summary: %v", err)
		}
	}
	return summary
}

// LastSummary returns the most recent round summary, or nil before the
// first round.
func (n *Node) LastSummary() *models.RoundSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastSummary
}

// LastRunAt returns when the last round finished.
func (n *Node) LastRunAt() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastRunAt
}

// Running reports whether a round is currently in flight.
func (n *Node) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}
