package models

import "time"

// RoundState tracks where a voting round is in its lifecycle.
type RoundState string

const (
	RoundIdle        RoundState = "idle"
	RoundHealthCheck RoundState = "health_check"
	RoundFetching    RoundState = "fetching"
	RoundDeciding    RoundState = "deciding"
	RoundExecuting   RoundState = "executing"
	RoundDone        RoundState = "done"
	RoundFailed      RoundState = "failed"
)

// RoundSummary is the best-effort report of one voting round. Callers always
// get one, even under partial failure — partial success is the steady state,
// not an exception.
type RoundSummary struct {
	State              RoundState                    `json:"state"`
	StartedAt          time.Time                     `json:"started_at"`
	ElapsedMs          int64                         `json:"elapsed_ms"`
	ProposalsProcessed int                           `json:"proposals_processed"`
	VotesCast          int                           `json:"votes_cast"`
	Errors             int                           `json:"errors"`
	Decisions          []VoteDecision                `json:"decisions,omitempty"`
	VoteRecords        map[uint64][]WalletVoteRecord `json:"vote_records,omitempty"`
	Error              string                        `json:"error,omitempty"`
}
