package models

// VoteDecision is the outcome of one strategy evaluation for one proposal.
// Created fresh per (proposal, strategy) pair, never mutated afterwards.
type VoteDecision struct {
	ProposalID uint64  `json:"proposal_id"`
	Strategy   string  `json:"strategy"`
	ShouldVote bool    `json:"should_vote"`
	Support    bool    `json:"support"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}
