package aap

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferNote is the public part of a shielded transfer.
type TransferNote struct {
	InputsNullifiers  []Nullifier        `json:"inputs_nullifiers"`
	OutputCommitments []RecordCommitment `json:"output_commitments"`
	Fee               uint64             `json:"fee"`
	// ProofBoundData is application data the proof is bound to.
	ProofBoundData hexutil.Bytes `json:"proof_bound_data"`
	// MemoVerKey verifies the signature over the note's receiver memos.
	MemoVerKey hexutil.Bytes `json:"memo_ver_key"`
	Proof      hexutil.Bytes `json:"proof,omitempty"`
}

// Hash identifies the note. The proof is not part of the hash.
func (n *TransferNote) Hash() [32]byte {
	k := crypto.NewKeccakState()
	for _, nf := range n.InputsNullifiers {
		_, _ = k.Write(nf[:])
	}
	for _, cm := range n.OutputCommitments {
		_, _ = k.Write(cm[:])
	}
	var fee [8]byte
	binary.BigEndian.PutUint64(fee[:], n.Fee)
	_, _ = k.Write(fee[:])
	var boundLen [4]byte
	binary.BigEndian.PutUint32(boundLen[:], uint32(len(n.ProofBoundData)))
	_, _ = k.Write(boundLen[:])
	_, _ = k.Write(n.ProofBoundData)
	_, _ = k.Write(n.MemoVerKey)

	var out [32]byte
	_, _ = k.Read(out[:])
	return out
}
