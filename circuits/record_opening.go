package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

func Curve() ecc.ID { return ecc.BN254 }

// RecordOpeningCircuit proves knowledge of the opening of a public record
// commitment whose amount and asset code are public, bound to the hash of
// the note's proof-bound data.
type RecordOpeningCircuit struct {
	Commitment    frontend.Variable `gnark:",public"`
	Amount        frontend.Variable `gnark:",public"`
	AssetCode     frontend.Variable `gnark:",public"`
	BoundDataHash frontend.Variable `gnark:",public"`

	PolicyDigest frontend.Variable
	Owner        frontend.Variable
	Freeze       frontend.Variable
	Blind        frontend.Variable
}

func (c *RecordOpeningCircuit) Define(api frontend.API) error {
	// amounts are u64 on the ledger
	api.ToBinary(c.Amount, 64)
	api.AssertIsBoolean(c.Freeze)

	// a burn with no bound data could be redirected
	api.AssertIsDifferent(c.BoundDataHash, 0)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Amount, c.AssetCode, c.PolicyDigest, c.Owner, c.Freeze, c.Blind)
	api.AssertIsEqual(h.Sum(), c.Commitment)
	return nil
}
