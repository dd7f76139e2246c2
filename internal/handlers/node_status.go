package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"govnode/internal/models"
	"govnode/internal/voting"
	"govnode/pkg/chain"
)

// NodeHandler exposes the node status surface and the manual round trigger.
// All state it serves is in-memory; there is no persistence behind it.
type NodeHandler struct {
	Node      *voting.Node
	Reader    *voting.ProposalReader
	Chain     *chain.Client
	RPCURLs   []string
	StartedAt time.Time
}

// GetNodeStatus returns the node's configuration, connectivity and the last
// round summary.
func (h *NodeHandler) GetNodeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	rpcChecks := chain.CheckRPCList(ctx, h.RPCURLs, 2*time.Second)
	healthy := true
	for _, check := range rpcChecks {
		if !check.OK {
			healthy = false
			break
		}
	}

	status := gin.H{
		"strategy":      h.Node.StrategyName(),
		"wallet_count":  h.Chain.WalletCount(),
		"round_running": h.Node.Running(),
		"rpc_healthy":   healthy,
		"rpc_checks":    rpcChecks,
		"uptime":        time.Since(h.StartedAt).String(),
	}
	if summary := h.Node.LastSummary(); summary != nil {
		status["last_round"] = summary
		status["last_round_at"] = h.Node.LastRunAt()
	}
	c.JSON(http.StatusOK, status)
}

// GetActiveProposals lists the proposals currently eligible for voting.
func (h *NodeHandler) GetActiveProposals(c *gin.Context) {
	proposals := h.Reader.ListActive(c.Request.Context())
	if proposals == nil {
		proposals = []*models.Proposal{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(proposals),
		"proposals": proposals,
	})
}

// TriggerVotingRound runs one round synchronously and returns its summary.
// A FAILED round maps to a 500 with the error summary as the body.
func (h *NodeHandler) TriggerVotingRound(c *gin.Context) {
	summary := h.Node.RunRound(c.Request.Context())
	if summary == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "voting round already in progress"})
		return
	}
	if summary.State == models.RoundFailed {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}
