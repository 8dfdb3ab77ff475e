package ledger

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/yourorg/capezk/pkg/aap"
)

// TransactionHash identifies a submitted transaction.
type TransactionHash [32]byte

func (h TransactionHash) String() string { return hexutil.Encode(h[:]) }

func (h TransactionHash) MarshalText() ([]byte, error) { return []byte(hexutil.Encode(h[:])), nil }
func (h *TransactionHash) UnmarshalText(b []byte) error {
	var raw hexutil.Bytes
	if err := raw.UnmarshalText(b); err != nil {
		return err
	}
	copy(h[:], raw)
	return nil
}

// Hash returns the identifier of the transaction, the hash of its note.
func (t *Transaction) Hash() TransactionHash {
	return TransactionHash(t.Note.Hash())
}

// Block is the outcome of one ledger commit as seen by a wallet.
type Block struct {
	Height    uint64                 `json:"height"`
	Committed []CommittedTransaction `json:"committed"`
	Rejected  []RejectedTransaction  `json:"rejected"`
	Wraps     []CommittedWrap        `json:"wraps"`
}

// CommittedTransaction lists the ledger positions assigned to the output
// commitments of a transaction, in note order.
type CommittedTransaction struct {
	Hash       TransactionHash `json:"hash"`
	Kind       TransactionKind `json:"kind"`
	OutputUIDs []uint64        `json:"output_uids"`
}

type RejectedTransaction struct {
	Hash   TransactionHash `json:"hash"`
	Reason string          `json:"reason"`
}

// CommittedWrap is a wrapped record that entered the ledger. Wrap openings are
// public on the contract, so the whole opening is carried.
type CommittedWrap struct {
	Opening aap.RecordOpening `json:"ro"`
	UID     uint64            `json:"uid"`
}
