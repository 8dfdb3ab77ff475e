// Package ledger holds the types specific to the CAPE ledger: the ERC20
// side of the bridge, transaction kinds and the transitions a wallet submits.
package ledger

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/capezk/pkg/aap"
)

// Erc20Code is the contract address of an ERC20 token.
type Erc20Code common.Address

// EthereumAddr is an account on the public chain.
type EthereumAddr common.Address

func (c Erc20Code) String() string    { return common.Address(c).Hex() }
func (a EthereumAddr) String() string { return common.Address(a).Hex() }

func (c Erc20Code) MarshalText() ([]byte, error) { return common.Address(c).MarshalText() }
func (c *Erc20Code) UnmarshalText(b []byte) error {
	return (*common.Address)(c).UnmarshalText(b)
}

func (a EthereumAddr) MarshalText() ([]byte, error) { return common.Address(a).MarshalText() }
func (a *EthereumAddr) UnmarshalText(b []byte) error {
	return (*common.Address)(a).UnmarshalText(b)
}

// HexToErc20Code parses a 0x-prefixed contract address.
func HexToErc20Code(s string) Erc20Code { return Erc20Code(common.HexToAddress(s)) }

// HexToEthereumAddr parses a 0x-prefixed account address.
func HexToEthereumAddr(s string) EthereumAddr { return EthereumAddr(common.HexToAddress(s)) }

// BurnMagicBytes prefixes the proof-bound data of every burn note.
const BurnMagicBytes = "TRICAPE burn"

var ErrNotBurnData = errors.New("bound data is not a burn marker")

// BurnBoundData returns the marker followed by the destination's raw bytes.
func BurnBoundData(dst EthereumAddr) []byte {
	out := make([]byte, 0, len(BurnMagicBytes)+common.AddressLength)
	out = append(out, BurnMagicBytes...)
	return append(out, dst[:]...)
}

// ParseBurnBoundData recovers the payout destination from burn bound data.
func ParseBurnBoundData(data []byte) (EthereumAddr, error) {
	if !bytes.HasPrefix(data, []byte(BurnMagicBytes)) {
		return EthereumAddr{}, ErrNotBurnData
	}
	rest := data[len(BurnMagicBytes):]
	if len(rest) != common.AddressLength {
		return EthereumAddr{}, fmt.Errorf("%w: destination is %d bytes", ErrNotBurnData, len(rest))
	}
	var dst EthereumAddr
	copy(dst[:], rest)
	return dst, nil
}

// Erc20AssetDescription is the description a sponsored asset code is derived
// from. It embeds both the token and the sponsor, so the same token sponsored
// by different accounts yields different codes.
func Erc20AssetDescription(code Erc20Code, sponsor EthereumAddr) []byte {
	return []byte(fmt.Sprintf("TRICAPE ERC20 %s sponsored by %s", code, sponsor))
}

// TransactionKind tags history entries.
type TransactionKind string

const (
	KindSend TransactionKind = "send"
	KindWrap TransactionKind = "wrap"
	KindBurn TransactionKind = "burn"
)

// Transaction is a note submitted to the ledger. Burns carry the opening of
// the payout record so the contract can check amount and asset in the clear.
type Transaction struct {
	Note        *aap.TransferNote  `json:"note"`
	BurnOpening *aap.RecordOpening `json:"burn_opening,omitempty"`
}

func (t *Transaction) IsBurn() bool { return t.BurnOpening != nil }

// Kind classifies the transaction for history purposes.
func (t *Transaction) Kind() TransactionKind {
	if t.IsBurn() {
		return KindBurn
	}
	return KindSend
}

// Transition is one state change submitted by a wallet. Exactly one of the
// fields is set.
type Transition struct {
	Transaction *Transaction    `json:"transaction,omitempty"`
	Wrap        *WrapTransition `json:"wrap,omitempty"`
}

// WrapTransition records an ERC20 deposit into a shielded record.
type WrapTransition struct {
	Erc20Code Erc20Code         `json:"erc20_code"`
	Src       EthereumAddr      `json:"src"`
	Opening   aap.RecordOpening `json:"ro"`
}

// NewBurn builds the transition for a burn note and its payout opening.
func NewBurn(note *aap.TransferNote, payout aap.RecordOpening) Transition {
	return Transition{Transaction: &Transaction{Note: note, BurnOpening: &payout}}
}

// NewTransfer builds the transition for an ordinary transfer note.
func NewTransfer(note *aap.TransferNote) Transition {
	return Transition{Transaction: &Transaction{Note: note}}
}

// Validate checks that exactly one variant is populated.
func (t Transition) Validate() error {
	switch {
	case t.Transaction != nil && t.Wrap != nil:
		return errors.New("transition has both a transaction and a wrap")
	case t.Transaction == nil && t.Wrap == nil:
		return errors.New("empty transition")
	case t.Transaction != nil && t.Transaction.Note == nil:
		return errors.New("transaction without note")
	}
	return nil
}
