package erc20

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/slot"
)

// StorageProof is one entry of an eth_getProof storageProof list.
type StorageProof struct {
	Key   common.Hash     `json:"key"`
	Value *hexutil.Big    `json:"value"`
	Proof []hexutil.Bytes `json:"proof"`
}

// BalanceProof is the account and storage proof of a holder's balance slot.
type BalanceProof struct {
	Block        uint64          `json:"block"`
	StateRoot    common.Hash     `json:"stateRoot"`
	AccountProof []hexutil.Bytes `json:"accountProof"`
	StorageHash  common.Hash     `json:"storageHash"`
	StorageProof []StorageProof  `json:"storageProof"`
}

// Balance is the proven slot value, or nil when the node returned no entry.
func (p *BalanceProof) Balance() *big.Int {
	if len(p.StorageProof) == 0 || p.StorageProof[0].Value == nil {
		return nil
	}
	return p.StorageProof[0].Value.ToInt()
}

// BalanceProof fetches the Merkle-Patricia proof of holder's balances entry
// at block, together with that block's state root.
func (c *Client) BalanceProof(ctx context.Context, token ledger.Erc20Code, holder ledger.EthereumAddr,
	slotIndex, block uint64) (*BalanceProof, error) {

	key := slot.MappingKey(common.Address(holder), slotIndex)
	tag := hexutil.Uint64(block)

	var p BalanceProof
	err := c.eth.Client().CallContext(ctx, &p, "eth_getProof",
		common.Address(token),
		[]string{key.Hex()},
		tag,
	)
	if err != nil {
		return nil, fmt.Errorf("eth_getProof %s: %w", key.Hex(), err)
	}
	if len(p.StorageProof) != 1 || p.StorageProof[0].Key != key {
		return nil, fmt.Errorf("eth_getProof: node returned no proof for slot %s", key.Hex())
	}

	var hdr struct {
		StateRoot common.Hash `json:"stateRoot"`
	}
	if err := c.eth.Client().CallContext(ctx, &hdr, "eth_getBlockByNumber", tag, false); err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber %d: %w", block, err)
	}
	p.Block, p.StateRoot = block, hdr.StateRoot
	return &p, nil
}
