package localchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/cape"
	"github.com/yourorg/capezk/pkg/ledger"
)

// snapshot is the on-disk form of a Chain.
type snapshot struct {
	Height      uint64                  `json:"height"`
	Registry    []cape.WrappedAsset     `json:"registry"`
	Balances    []Erc20Balance          `json:"erc20_balances"`
	AddressBook []aap.UserPubKey        `json:"address_book"`
	Nullifiers  []aap.Nullifier         `json:"nullifiers"`
	Commitments []aap.RecordCommitment  `json:"commitments"`
	Staged      []ledger.WrapTransition `json:"staged_wraps"`
	Pending     []ledger.Transaction    `json:"pending"`
}

// Erc20Balance is one holder's balance of one token.
type Erc20Balance struct {
	Code   ledger.Erc20Code    `json:"code"`
	Holder ledger.EthereumAddr `json:"holder"`
	Amount uint64              `json:"amount"`
}

// SaveToFile writes the chain state as indented JSON, overwriting path.
func (c *Chain) SaveToFile(path string) error {
	c.mu.Lock()
	s := c.snapshotLocked()
	c.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write chain snapshot: %w", err)
	}
	return f.Close()
}

// LoadFromFile restores a chain written by SaveToFile.
func LoadFromFile(path string, opts ...Option) (*Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var s snapshot
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode chain snapshot: %w", err)
	}
	c := New(opts...)
	c.height = s.Height
	for _, wa := range s.Registry {
		c.byDef[wa.Definition.Key()] = len(c.registry)
		c.registry = append(c.registry, wa)
	}
	for _, b := range s.Balances {
		c.creditLocked(b.Code, b.Holder, b.Amount)
	}
	for _, pub := range s.AddressBook {
		c.book[pub.Address] = pub
	}
	for _, nf := range s.Nullifiers {
		c.nullifiers[nf] = struct{}{}
	}
	c.commitments = s.Commitments
	c.staged = s.Staged
	c.pending = s.Pending
	return c, nil
}

func (c *Chain) snapshotLocked() snapshot {
	s := snapshot{
		Height:      c.height,
		Registry:    append([]cape.WrappedAsset(nil), c.registry...),
		Commitments: append([]aap.RecordCommitment(nil), c.commitments...),
		Staged:      append([]ledger.WrapTransition(nil), c.staged...),
		Pending:     append([]ledger.Transaction(nil), c.pending...),
	}
	s.Balances = c.balancesLocked()
	for _, pub := range c.book {
		s.AddressBook = append(s.AddressBook, pub)
	}
	sort.Slice(s.AddressBook, func(i, j int) bool {
		return bytes.Compare(s.AddressBook[i].Address[:], s.AddressBook[j].Address[:]) < 0
	})
	for nf := range c.nullifiers {
		s.Nullifiers = append(s.Nullifiers, nf)
	}
	sort.Slice(s.Nullifiers, func(i, j int) bool {
		return bytes.Compare(s.Nullifiers[i][:], s.Nullifiers[j][:]) < 0
	})
	return s
}

// Balances lists every non-zero ERC20 balance, ordered by token then holder.
func (c *Chain) Balances() []Erc20Balance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balancesLocked()
}

func (c *Chain) balancesLocked() []Erc20Balance {
	var out []Erc20Balance
	for code, holders := range c.erc20 {
		for holder, amount := range holders {
			if amount > 0 {
				out = append(out, Erc20Balance{Code: code, Holder: holder, Amount: amount})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Code != b.Code {
			return bytes.Compare(a.Code[:], b.Code[:]) < 0
		}
		return bytes.Compare(a.Holder[:], b.Holder[:]) < 0
	})
	return out
}
