package circuits

import (
	"math/big"

	"github.com/yourorg/capezk/pkg/aap"
)

// Assign builds a full witness assignment for ro bound to boundData.
func Assign(ro aap.RecordOpening, boundData []byte) *RecordOpeningCircuit {
	f := ro.Fields()
	cm := ro.Commitment()
	return &RecordOpeningCircuit{
		Commitment:    new(big.Int).SetBytes(cm[:]),
		Amount:        new(big.Int).SetUint64(ro.Amount),
		AssetCode:     f.Code.BigInt(new(big.Int)),
		BoundDataHash: aap.HashToField(boundData),
		PolicyDigest:  f.PolicyDigest.BigInt(new(big.Int)),
		Owner:         f.Owner.BigInt(new(big.Int)),
		Freeze:        f.Freeze.BigInt(new(big.Int)),
		Blind:         f.Blind.BigInt(new(big.Int)),
	}
}

// AssignPublic builds the public part of the assignment from what a verifier
// sees: the commitment, the revealed amount and code, and the bound data.
func AssignPublic(cm aap.RecordCommitment, amount uint64, code aap.AssetCode, boundData []byte) *RecordOpeningCircuit {
	ro := aap.RecordOpening{AssetDef: aap.AssetDefinition{Code: code}}
	f := ro.Fields()
	return &RecordOpeningCircuit{
		Commitment:    new(big.Int).SetBytes(cm[:]),
		Amount:        new(big.Int).SetUint64(amount),
		AssetCode:     f.Code.BigInt(new(big.Int)),
		BoundDataHash: aap.HashToField(boundData),
	}
}
