package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"govnode/internal/models"
)

const (
	dialTimeout        = 10 * time.Second
	receiptPollDelay   = 2 * time.Second
	voteGasLimit       = 200000
	readRatePerSecond  = 10
	readBurst          = 5
	connectivityBudget = 5 * time.Second
)

// Client talks to the AssetDAO contract over one RPC connection shared
// read-only by every component in a round. All reads flow through a single
// rate limiter so a windowed proposal scan cannot trip provider limits.
type Client struct {
	eth         *ethclient.Client
	contract    common.Address
	abi         abi.ABI
	wallets     *WalletManager
	chainID     *big.Int
	readLimiter *rate.Limiter
}

// NewClient dials the RPC endpoint and binds the AssetDAO contract address.
func NewClient(rpcURL, contractAddress string, wallets *WalletManager) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid AssetDAO contract address: %s", contractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(assetDAOABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse AssetDAO ABI: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC endpoint: %w", err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	logrus.Infof("Connected to chain %s, AssetDAO at %s, %d wallets", chainID, contractAddress, wallets.Count())
	return &Client{
		eth:         eth,
		contract:    common.HexToAddress(contractAddress),
		abi:         parsed,
		wallets:     wallets,
		chainID:     chainID,
		readLimiter: rate.NewLimiter(rate.Limit(readRatePerSecond), readBurst),
	}, nil
}

// callContract packs, executes and unpacks one read-only contract call.
// Every read in the package goes through here, so timeouts and rate
// limiting are applied uniformly.
func (c *Client) callContract(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if err := c.readLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return out, nil
}

// ProposalCount returns the total number of proposals ever created.
func (c *Client) ProposalCount(ctx context.Context) (uint64, error) {
	out, err := c.callContract(ctx, "getProposalCount")
	if err != nil {
		return 0, err
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected proposal count type %T", out[0])
	}
	return count.Uint64(), nil
}

// ProposalByID fetches and decodes one proposal snapshot.
func (c *Client) ProposalByID(ctx context.Context, id uint64) (*models.Proposal, error) {
	out, err := c.callContract(ctx, "getProposal", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return decodeProposal(id, out)
}

// HasVoted reports whether the wallet at index already voted on proposal.
func (c *Client) HasVoted(ctx context.Context, proposalID uint64, walletIndex int) (bool, error) {
	addr, err := c.wallets.Address(walletIndex)
	if err != nil {
		return false, err
	}
	out, err := c.callContract(ctx, "hasVoted", new(big.Int).SetUint64(proposalID), addr)
	if err != nil {
		return false, err
	}
	voted, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected hasVoted result type %T", out[0])
	}
	return voted, nil
}

// SubmitVote signs a vote transaction with the wallet at index, submits it
// and waits for the receipt within the caller's context. A context deadline
// only stops the wait — the transaction may still land on-chain later.
func (c *Client) SubmitVote(ctx context.Context, walletIndex int, proposalID uint64, support bool) (string, error) {
	key, err := c.wallets.Key(walletIndex)
	if err != nil {
		return "", err
	}
	from, err := c.wallets.Address(walletIndex)
	if err != nil {
		return "", err
	}

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce for wallet %d: %w", walletIndex, err)
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}
	data, err := c.abi.Pack("vote", new(big.Int).SetUint64(proposalID), support)
	if err != nil {
		return "", fmt.Errorf("failed to pack vote call: %w", err)
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), voteGasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign vote transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to send vote transaction: %w", err)
	}

	hash := signed.Hash()
	receipt, err := c.waitForReceipt(ctx, hash)
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("vote transaction %s reverted", hash.Hex())
	}
	return hash.Hex(), nil
}

// waitForReceipt polls for the transaction receipt until the context ends.
func (c *Client) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if err != ethereum.NotFound && ctx.Err() == nil {
			logrus.Debugf("Receipt poll for %s: %v", hash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-time.After(receiptPollDelay):
		}
	}
}

// WalletCount returns the number of configured signing wallets.
func (c *Client) WalletCount() int {
	return c.wallets.Count()
}

// Balance returns the native balance of an address in wei.
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}
	return c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
}

// ValidateConnectivity probes the RPC connection and confirms every wallet
// address is queryable. Used at startup and by the status endpoint.
func (c *Client) ValidateConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectivityBudget)
	defer cancel()

	if _, err := c.eth.BlockNumber(ctx); err != nil {
		logrus.Warnf("Connectivity check failed: %v", err)
		return false
	}
	for i, addr := range c.wallets.Addresses() {
		if _, err := c.eth.BalanceAt(ctx, addr, nil); err != nil {
			logrus.Warnf("Balance probe failed for wallet %d (%s): %v", i, addr.Hex(), err)
			return false
		}
	}
	return true
}
