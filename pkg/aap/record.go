package aap

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FreezeFlag marks whether a record can currently be spent by its owner.
type FreezeFlag uint8

const (
	Unfrozen FreezeFlag = iota
	Frozen
)

func (f FreezeFlag) String() string {
	if f == Frozen {
		return "frozen"
	}
	return "unfrozen"
}

// Blind is the hiding randomness of a record commitment. It always holds a
// canonical BN254 scalar.
type Blind [32]byte

// RecordCommitment is the public commitment to a record opening.
type RecordCommitment [32]byte

// Nullifier is published when a record is spent.
type Nullifier [32]byte

// RecordOpening is the plaintext content behind a record commitment.
type RecordOpening struct {
	Amount   uint64          `json:"amount"`
	AssetDef AssetDefinition `json:"asset_def"`
	PubKey   UserPubKey      `json:"pub_key"`
	Freeze   FreezeFlag      `json:"freeze"`
	Blind    Blind           `json:"blind"`
}

// NewRecordOpening samples a blind from rng and returns the opening.
func NewRecordOpening(rng io.Reader, amount uint64, asset AssetDefinition,
	pub UserPubKey, freeze FreezeFlag) (RecordOpening, error) {

	var raw [32]byte
	if _, err := io.ReadFull(rng, raw[:]); err != nil {
		return RecordOpening{}, fmt.Errorf("sample blind: %w", err)
	}
	e := toField(raw[:])
	return RecordOpening{
		Amount:   amount,
		AssetDef: asset,
		PubKey:   pub,
		Freeze:   freeze,
		Blind:    Blind(e.Bytes()),
	}, nil
}

// OpeningFields are the field elements a commitment is computed over, in
// hashing order.
type OpeningFields struct {
	Amount       fr.Element
	Code         fr.Element
	PolicyDigest fr.Element
	Owner        fr.Element
	Freeze       fr.Element
	Blind        fr.Element
}

// Fields returns the commitment inputs of ro.
func (ro RecordOpening) Fields() OpeningFields {
	var f OpeningFields
	f.Amount.SetUint64(ro.Amount)
	f.Code = toField(ro.AssetDef.Code[:])
	digest := ro.AssetDef.Policy.Digest()
	f.PolicyDigest = toField(digest[:])
	f.Owner = ownerField(ro.PubKey.Address)
	f.Freeze.SetUint64(uint64(ro.Freeze))
	f.Blind = toField(ro.Blind[:])
	return f
}

// Commitment computes MiMC(amount, code, policy, owner, freeze, blind).
func (ro RecordOpening) Commitment() RecordCommitment {
	f := ro.Fields()
	return RecordCommitment(mimcHash(f.Amount, f.Code, f.PolicyDigest, f.Owner, f.Freeze, f.Blind))
}

// Validate checks the structural requirements every staged record must meet.
func (ro RecordOpening) Validate() error {
	if ro.Amount == 0 {
		return fmt.Errorf("record amount must be positive")
	}
	if ro.Freeze > Frozen {
		return fmt.Errorf("unknown freeze flag %d", ro.Freeze)
	}
	var zero UserAddress
	if ro.PubKey.Address == zero {
		return fmt.Errorf("record has no owner")
	}
	return nil
}
