package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"govnode/internal/models"
)

// assetDAOABI is the minimal surface of the AssetDAO contract this node
// touches: proposal reads, the per-voter dedup check, and the vote call.
const assetDAOABI = `[
  {"name":"getProposalCount","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"name":"getProposal","type":"function","stateMutability":"view","inputs":[{"name":"proposalId","type":"uint256"}],"outputs":[
    {"name":"proposer","type":"address"},
    {"name":"proposalType","type":"uint8"},
    {"name":"assetAddress","type":"address"},
    {"name":"amount","type":"uint256"},
    {"name":"description","type":"string"},
    {"name":"votesFor","type":"uint256"},
    {"name":"votesAgainst","type":"uint256"},
    {"name":"startTime","type":"uint256"},
    {"name":"endTime","type":"uint256"},
    {"name":"state","type":"uint8"},
    {"name":"executed","type":"bool"},
    {"name":"cancelled","type":"bool"}]},
  {"name":"hasVoted","type":"function","stateMutability":"view","inputs":[{"name":"proposalId","type":"uint256"},{"name":"voter","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"name":"vote","type":"function","stateMutability":"nonpayable","inputs":[{"name":"proposalId","type":"uint256"},{"name":"support","type":"bool"}],"outputs":[]}
]`

// tokenDecimals is the fixed-point scale of all DAO amounts and vote weights.
const tokenDecimals = 18

// Positional layout of the getProposal return tuple (contract v1). This is
// the single field-mapping table for the raw tuple; decoded proposals are
// the only thing that leaves this package.
const (
	fieldProposer = iota
	fieldProposalType
	fieldAssetAddress
	fieldAmount
	fieldDescription
	fieldVotesFor
	fieldVotesAgainst
	fieldStartTime
	fieldEndTime
	fieldState
	fieldExecuted
	fieldCancelled
	proposalFieldCount
)

// decodeProposal maps the unpacked getProposal tuple onto the canonical
// Proposal model. Timestamps stay raw here; the reader normalizes them.
func decodeProposal(id uint64, out []interface{}) (*models.Proposal, error) {
	if len(out) != proposalFieldCount {
		return nil, fmt.Errorf("proposal %d: unexpected tuple size %d, want %d", id, len(out), proposalFieldCount)
	}

	proposer, ok := out[fieldProposer].(common.Address)
	if !ok {
		return nil, tupleFieldError(id, "proposer", out[fieldProposer])
	}
	proposalType, ok := out[fieldProposalType].(uint8)
	if !ok {
		return nil, tupleFieldError(id, "proposalType", out[fieldProposalType])
	}
	assetAddress, ok := out[fieldAssetAddress].(common.Address)
	if !ok {
		return nil, tupleFieldError(id, "assetAddress", out[fieldAssetAddress])
	}
	amount, ok := out[fieldAmount].(*big.Int)
	if !ok {
		return nil, tupleFieldError(id, "amount", out[fieldAmount])
	}
	description, ok := out[fieldDescription].(string)
	if !ok {
		return nil, tupleFieldError(id, "description", out[fieldDescription])
	}
	votesFor, ok := out[fieldVotesFor].(*big.Int)
	if !ok {
		return nil, tupleFieldError(id, "votesFor", out[fieldVotesFor])
	}
	votesAgainst, ok := out[fieldVotesAgainst].(*big.Int)
	if !ok {
		return nil, tupleFieldError(id, "votesAgainst", out[fieldVotesAgainst])
	}
	startTime, ok := out[fieldStartTime].(*big.Int)
	if !ok {
		return nil, tupleFieldError(id, "startTime", out[fieldStartTime])
	}
	endTime, ok := out[fieldEndTime].(*big.Int)
	if !ok {
		return nil, tupleFieldError(id, "endTime", out[fieldEndTime])
	}
	state, ok := out[fieldState].(uint8)
	if !ok {
		return nil, tupleFieldError(id, "state", out[fieldState])
	}
	executed, ok := out[fieldExecuted].(bool)
	if !ok {
		return nil, tupleFieldError(id, "executed", out[fieldExecuted])
	}
	cancelled, ok := out[fieldCancelled].(bool)
	if !ok {
		return nil, tupleFieldError(id, "cancelled", out[fieldCancelled])
	}

	return &models.Proposal{
		ID:           id,
		Proposer:     strings.ToLower(proposer.Hex()),
		ProposalType: models.ProposalType(proposalType),
		AssetAddress: strings.ToLower(assetAddress.Hex()),
		Amount:       formatUnits(amount, tokenDecimals),
		Description:  description,
		VotesFor:     formatUnits(votesFor, tokenDecimals),
		VotesAgainst: formatUnits(votesAgainst, tokenDecimals),
		StartTime:    startTime.Int64(),
		EndTime:      endTime.Int64(),
		State:        models.ProposalState(state),
		Executed:     executed,
		Cancelled:    cancelled,
	}, nil
}

func tupleFieldError(id uint64, field string, got interface{}) error {
	return fmt.Errorf("proposal %d: unexpected type %T for field %s", id, got, field)
}

// formatUnits renders a fixed-point integer as a decimal string in token
// units, with trailing zeros trimmed. Display/scoring precision only; the
// exact wei value never leaves the chain boundary.
func formatUnits(v *big.Int, decimals int) string {
	if v == nil || v.Sign() == 0 {
		return "0"
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r := new(big.Rat).SetFrac(v, scale)
	s := strings.TrimRight(r.FloatString(decimals), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
