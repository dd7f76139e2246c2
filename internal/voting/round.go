package voting

import (
	"context"
	"fmt"
	"sort"
	"time"

	logrus "github.com/sirupsen/logrus"

	"govnode/internal/models"
)

// RoundConfig bounds one voting round.
type RoundConfig struct {
	MaxProposals  int           // hard cap on proposals executed per round
	Budget        time.Duration // wall-clock budget for the whole round
	HealthTimeout time.Duration // budget for the initial health check
}

// DefaultRoundConfig returns the reference deployment bounds.
func DefaultRoundConfig() RoundConfig {
	return RoundConfig{
		MaxProposals:  10,
		Budget:        60 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

// VotingRound runs one health-check → fetch → decide → execute pass. It is
// self-terminating: it always returns a summary and never panics or errors
// past its boundary, so schedulers and HTTP handlers can call it blindly.
type VotingRound struct {
	chain    ChainService
	reader   *ProposalReader
	strategy Strategy
	executor *VoteExecutor
	market   MarketProvider // optional, may be nil
	cfg      RoundConfig
}

func NewVotingRound(chain ChainService, reader *ProposalReader, strategy Strategy, executor *VoteExecutor, market MarketProvider, cfg RoundConfig) *VotingRound {
	if cfg.MaxProposals < 1 {
		cfg.MaxProposals = DefaultRoundConfig().MaxProposals
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultRoundConfig().Budget
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultRoundConfig().HealthTimeout
	}
	return &VotingRound{
		chain:    chain,
		reader:   reader,
		strategy: strategy,
		executor: executor,
		market:   market,
		cfg:      cfg,
	}
}

type roundItem struct {
	proposal *models.Proposal
	decision models.VoteDecision
}

// Run executes one full round and returns its summary.
func (v *VotingRound) Run(ctx context.Context) (summary *models.RoundSummary) {
	start := time.Now()
	summary = &models.RoundSummary{
		State:       models.RoundHealthCheck,
		StartedAt:   start,
		VoteRecords: make(map[uint64][]models.WalletVoteRecord),
	}
	defer func() {
		if r := recover(); r != nil {
			summary.State = models.RoundFailed
			summary.Error = fmt.Sprintf("round panicked: %v", r)
			logrus.Errorf("Voting round panicked: %v", r)
		}
		summary.ElapsedMs = time.Since(start).Milliseconds()
		logrus.WithFields(logrus.Fields{
			"state":      summary.State,
			"processed":  summary.ProposalsProcessed,
			"votes_cast": summary.VotesCast,
			"errors":     summary.Errors,
			"elapsed_ms": summary.ElapsedMs,
		}).Info("Voting round finished")
	}()

	budgetCtx, cancel := context.WithTimeout(ctx, v.cfg.Budget)
	defer cancel()

	// Health check: one lightweight read. Failure aborts the round without
	// raising to the caller.
	hcCtx, hcCancel := context.WithTimeout(budgetCtx, v.cfg.HealthTimeout)
	_, err := v.chain.ProposalCount(hcCtx)
	hcCancel()
	if err != nil {
		summary.State = models.RoundFailed
		summary.Error = fmt.Sprintf("health check failed: %v", err)
		logrus.Warnf("Voting round aborted, health check failed: %v", err)
		return summary
	}

	summary.State = models.RoundFetching
	proposals := v.reader.ListActive(budgetCtx)
	if len(proposals) == 0 {
		summary.State = models.RoundDone
		return summary
	}

	var snapshot *models.MarketSnapshot
	if v.market != nil {
		snapshot = v.market.Snapshot(budgetCtx)
	}

	summary.State = models.RoundDeciding
	items := make([]roundItem, 0, len(proposals))
	for _, p := range proposals {
		items = append(items, roundItem{proposal: p, decision: v.safeDecide(p, snapshot)})
	}
	prioritize(items)
	if len(items) > v.cfg.MaxProposals {
		logrus.Infof("Truncating round from %d to %d proposals", len(items), v.cfg.MaxProposals)
		items = items[:v.cfg.MaxProposals]
	}
	summary.ProposalsProcessed = len(items)
	for _, it := range items {
		summary.Decisions = append(summary.Decisions, it.decision)
	}

	summary.State = models.RoundExecuting
	for _, it := range items {
		if budgetCtx.Err() != nil {
			// Emergency brake: budget exhausted mid-list. Report what was
			// completed; the next scheduled round picks up the rest.
			logrus.Warnf("Round budget exhausted, stopping before proposal %d", it.proposal.ID)
			break
		}
		records := v.executor.ExecuteVotes(budgetCtx, it.proposal, it.decision)
		summary.VoteRecords[it.proposal.ID] = records
		for _, rec := range records {
			switch rec.Outcome {
			case models.OutcomeSuccess:
				summary.VotesCast++
			case models.OutcomeError, models.OutcomeTimeout:
				summary.Errors++
			}
		}
	}

	summary.State = models.RoundDone
	return summary
}

// safeDecide shields the round from a misbehaving strategy: a panic inside
// Decide becomes a conservative "analysis failed" abstention.
func (v *VotingRound) safeDecide(p *models.Proposal, snapshot *models.MarketSnapshot) (d models.VoteDecision) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Strategy %s panicked on proposal %d: %v", v.strategy.Name(), p.ID, r)
			d = models.VoteDecision{
				ProposalID: p.ID,
				Strategy:   v.strategy.Name(),
				ShouldVote: false,
				Reasoning:  "analysis failed",
			}
		}
	}()
	return v.strategy.Decide(p, snapshot)
}

// prioritize orders proposals for execution: stable-asset proposals first,
// then by amount descending, so the emergency brake drops the least
// important work.
func prioritize(items []roundItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].proposal, items[j].proposal
		si, sj := pi.IsStableAsset(), pj.IsStableAsset()
		if si != sj {
			return si
		}
		ai, _ := parseNonNegative(pi.Amount)
		aj, _ := parseNonNegative(pj.Amount)
		return ai > aj
	})
}
