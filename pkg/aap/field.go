package aap

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
)

// toField reduces an arbitrary big-endian byte string modulo the BN254
// scalar field.
func toField(b []byte) fr.Element {
	var e fr.Element
	e.SetBytes(b)
	return e
}

// keccakToField hashes data with Keccak-256 and reduces the digest.
func keccakToField(data ...[]byte) fr.Element {
	return toField(crypto.Keccak256(data...))
}

// mimcHash hashes a list of field elements. Each element is written as one
// 32-byte canonical block, matching std/hash/mimc inside a circuit.
func mimcHash(elems ...fr.Element) [32]byte {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		_, _ = h.Write(b[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashToField hashes arbitrary bytes into a BN254 scalar. The prover and
// verifier use it to commit to the proof-bound data of a note.
func HashToField(data []byte) *big.Int {
	e := keccakToField(data)
	return e.BigInt(new(big.Int))
}
