package chain

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletManager holds the independent signing identities of this node.
// Construction fails if any configured key is missing or malformed, so a
// misconfigured node never reaches its first round. Wallets share no
// mutable state.
type WalletManager struct {
	keys      []*ecdsa.PrivateKey
	addresses []common.Address
}

// NewWalletManager builds the wallet set from hex-encoded private keys in
// wallet-index order (key i belongs to AI_NODE_<i+1>_PRIVATE_KEY).
func NewWalletManager(privateKeys []string) (*WalletManager, error) {
	if len(privateKeys) == 0 {
		return nil, fmt.Errorf("no wallet private keys configured")
	}

	m := &WalletManager{
		keys:      make([]*ecdsa.PrivateKey, 0, len(privateKeys)),
		addresses: make([]common.Address, 0, len(privateKeys)),
	}
	for i, hexKey := range privateKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("wallet %d: invalid private key: %w", i+1, err)
		}
		m.keys = append(m.keys, key)
		m.addresses = append(m.addresses, crypto.PubkeyToAddress(key.PublicKey))
	}
	return m, nil
}

// Count returns the number of configured wallets.
func (m *WalletManager) Count() int {
	return len(m.keys)
}

// Address returns the address of the wallet at the 0-based index.
func (m *WalletManager) Address(index int) (common.Address, error) {
	if index < 0 || index >= len(m.addresses) {
		return common.Address{}, fmt.Errorf("wallet index %d out of range [0,%d)", index, len(m.addresses))
	}
	return m.addresses[index], nil
}

// Key returns the signing key of the wallet at the 0-based index.
func (m *WalletManager) Key(index int) (*ecdsa.PrivateKey, error) {
	if index < 0 || index >= len(m.keys) {
		return nil, fmt.Errorf("wallet index %d out of range [0,%d)", index, len(m.keys))
	}
	return m.keys[index], nil
}

// Addresses returns all wallet addresses in index order.
func (m *WalletManager) Addresses() []common.Address {
	out := make([]common.Address, len(m.addresses))
	copy(out, m.addresses)
	return out
}
