// Package erc20 reads ERC20 token state from an Ethereum JSON-RPC node.
package erc20

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/slot"
)

const erc20ABI = `[
  {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
  {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var parsedABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
	return a
}()

// Client is a read-only view of ERC20 contracts.
type Client struct {
	eth *ethclient.Client
}

func NewClient(eth *ethclient.Client) *Client {
	return &Client{eth: eth}
}

// Dial connects to the node at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(eth), nil
}

func (c *Client) Close() { c.eth.Close() }

// BalanceOf calls token.balanceOf(holder) at the latest block.
func (c *Client) BalanceOf(ctx context.Context, token ledger.Erc20Code, holder ledger.EthereumAddr) (*big.Int, error) {
	out, err := c.call(ctx, token, "balanceOf", common.Address(holder))
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf: unexpected result type %T", out[0])
	}
	return bal, nil
}

// Decimals calls token.decimals().
func (c *Client) Decimals(ctx context.Context, token ledger.Erc20Code) (uint8, error) {
	out, err := c.call(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected result type %T", out[0])
	}
	return d, nil
}

// StorageBalance reads holder's entry of the balances mapping declared at
// slotIndex directly from contract storage.
func (c *Client) StorageBalance(ctx context.Context, token ledger.Erc20Code, holder ledger.EthereumAddr,
	slotIndex uint64) (*big.Int, error) {

	key := slot.MappingKey(common.Address(holder), slotIndex)
	raw, err := c.eth.StorageAt(ctx, common.Address(token), key, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getStorageAt %s: %w", key.Hex(), err)
	}
	return new(big.Int).SetBytes(raw), nil
}

func (c *Client) call(ctx context.Context, token ledger.Erc20Code, method string, args ...any) ([]any, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := common.Address(token)
	raw, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", method, err)
	}
	out, err := parsedABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}
