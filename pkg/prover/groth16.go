// Package prover binds the record-opening circuit to Groth16: key setup and
// caching, proving notes for the wallet and verifying them for the ledger.
package prover

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"

	"github.com/yourorg/capezk/circuits"
	"github.com/yourorg/capezk/pkg/aap"
)

const (
	ProvingKeyFile   = "record_pk.bin"
	VerifyingKeyFile = "record_vk.bin"
	// DigestFile holds the hex circuit digest the cached keys were set up for.
	DigestFile = "record_circuit.sha256"
)

var ErrNoProvingKey = errors.New("prover has no proving key")

// Groth16 proves and verifies record openings. A value loaded with only a
// verifying key can verify but not prove.
type Groth16 struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
	log zerolog.Logger
}

// Compile builds the constraint system of the record-opening circuit.
func Compile() (constraint.ConstraintSystem, error) {
	return frontend.Compile(
		circuits.Curve().ScalarField(),
		r1cs.NewBuilder,
		&circuits.RecordOpeningCircuit{},
	)
}

// Setup runs a fresh (insecure, single-party) trusted setup in memory.
func Setup(log zerolog.Logger) (*Groth16, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("groth16 setup done")
	return &Groth16{ccs: ccs, pk: pk, vk: vk, log: log}, nil
}

// SetupOrLoad reuses the keys cached in dir, running and caching a setup
// when they are missing or were made for a different circuit.
func SetupOrLoad(dir string, log zerolog.Logger) (*Groth16, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	digest, err := digestOf(ccs)
	if err != nil {
		return nil, fmt.Errorf("circuit digest: %w", err)
	}

	cached, err := os.ReadFile(filepath.Join(dir, DigestFile))
	switch {
	case err != nil:
		log.Debug().Err(err).Str("dir", dir).Msg("no cached circuit digest")
	case strings.TrimSpace(string(cached)) != hex.EncodeToString(digest[:]):
		log.Warn().Str("dir", dir).Msg("cached groth16 keys belong to another circuit")
	default:
		pk, pkErr := loadProvingKey(filepath.Join(dir, ProvingKeyFile))
		vk, vkErr := loadVerifyingKey(filepath.Join(dir, VerifyingKeyFile))
		if pkErr == nil && vkErr == nil {
			log.Debug().Str("dir", dir).Msg("loaded cached groth16 keys")
			return &Groth16{ccs: ccs, pk: pk, vk: vk, log: log}, nil
		}
	}

	g, err := Setup(log)
	if err != nil {
		return nil, err
	}
	if err := g.Save(dir); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadVerifier reads a verifying key written by Save.
func LoadVerifier(vkPath string, log zerolog.Logger) (*Groth16, error) {
	vk, err := loadVerifyingKey(vkPath)
	if err != nil {
		return nil, err
	}
	return &Groth16{vk: vk, log: log}, nil
}

// Save writes both keys into dir.
func (g *Groth16) Save(dir string) error {
	if g.pk == nil {
		return ErrNoProvingKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, ProvingKeyFile), g.pk); err != nil {
		return fmt.Errorf("save proving key: %w", err)
	}
	if err := writeTo(filepath.Join(dir, VerifyingKeyFile), g.vk); err != nil {
		return fmt.Errorf("save verifying key: %w", err)
	}
	digest, err := g.CircuitDigest()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, DigestFile), []byte(hex.EncodeToString(digest[:])+"\n"), 0o644)
}

// CircuitDigest is the SHA-256 of the serialized constraint system, used to
// tell whether cached keys belong to the current circuit.
func (g *Groth16) CircuitDigest() ([32]byte, error) {
	if g.ccs == nil {
		return [32]byte{}, errors.New("no constraint system loaded")
	}
	return digestOf(g.ccs)
}

func digestOf(ccs constraint.ConstraintSystem) ([32]byte, error) {
	var buf bytes.Buffer
	if _, err := ccs.WriteTo(&buf); err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// Prove proves knowledge of ro's opening bound to boundData.
func (g *Groth16) Prove(ro aap.RecordOpening, boundData []byte) ([]byte, error) {
	if g.pk == nil || g.ccs == nil {
		return nil, ErrNoProvingKey
	}
	w, err := frontend.NewWitness(circuits.Assign(ro, boundData), circuits.Curve().ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(g.ccs, g.pk, w)
	if err != nil {
		return nil, fmt.Errorf("groth16 prove: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Verify checks a proof produced by Prove against the public record data.
func (g *Groth16) Verify(proofBytes []byte, cm aap.RecordCommitment, amount uint64,
	code aap.AssetCode, boundData []byte) error {

	proof := groth16.NewProof(circuits.Curve())
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	w, err := frontend.NewWitness(
		circuits.AssignPublic(cm, amount, code, boundData),
		circuits.Curve().ScalarField(),
		frontend.PublicOnly(),
	)
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}
	return groth16.Verify(proof, g.vk, w)
}

// VerifyingKey exposes the key for export.
func (g *Groth16) VerifyingKey() groth16.VerifyingKey { return g.vk }

type writerTo interface {
	WriteTo(w io.Writer) (int64, error)
}

func writeTo(path string, v writerTo) error {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func loadProvingKey(path string) (groth16.ProvingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(circuits.Curve())
	if _, err := pk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("decode proving key %s: %w", path, err)
	}
	return pk, nil
}

func loadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(circuits.Curve())
	if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("decode verifying key %s: %w", path, err)
	}
	return vk, nil
}
