package prover

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// PublicInputs is everything a verifier needs besides the proof and key:
// the revealed payout of a burn.
type PublicInputs struct {
	Commitment aap.RecordCommitment `json:"commitment"`
	Amount     uint64               `json:"amount"`
	AssetCode  aap.AssetCode        `json:"asset_code"`
	BoundData  hexutil.Bytes        `json:"bound_data"`
}

// BurnPublicInputs extracts the public inputs of a burn transaction.
func BurnPublicInputs(txn *ledger.Transaction) (PublicInputs, error) {
	if !txn.IsBurn() {
		return PublicInputs{}, fmt.Errorf("transaction is not a burn")
	}
	return PublicInputs{
		Commitment: txn.Note.OutputCommitments[0],
		Amount:     txn.BurnOpening.Amount,
		AssetCode:  txn.BurnOpening.AssetDef.Code,
		BoundData:  txn.Note.ProofBoundData,
	}, nil
}

// VerifyPublic checks proof against p.
func (g *Groth16) VerifyPublic(proof []byte, p PublicInputs) error {
	return g.Verify(proof, p.Commitment, p.Amount, p.AssetCode, p.BoundData)
}

func WritePublicInputs(path string, p PublicInputs) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func ReadPublicInputs(path string) (PublicInputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PublicInputs{}, err
	}
	var p PublicInputs
	if err := json.Unmarshal(raw, &p); err != nil {
		return PublicInputs{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return p, nil
}
