package aap

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
)

// ErrMemoNotOwned is returned when a memo decrypts to a record owned by
// someone else.
var ErrMemoNotOwned = errors.New("memo not addressed to this key")

// ReceiverMemo carries a record opening encrypted to the record owner.
type ReceiverMemo struct {
	Ciphertext hexutil.Bytes `json:"ciphertext"`
}

// Signature is a recoverable secp256k1 signature over a set of memos.
type Signature = hexutil.Bytes

// NewReceiverMemo encrypts ro to its owner's encryption key.
func NewReceiverMemo(rng io.Reader, ro RecordOpening) (ReceiverMemo, error) {
	pub, err := crypto.DecompressPubkey(ro.PubKey.EncKey[:])
	if err != nil {
		return ReceiverMemo{}, fmt.Errorf("receiver encryption key: %w", err)
	}
	plain, err := json.Marshal(ro)
	if err != nil {
		return ReceiverMemo{}, err
	}
	ct, err := ecies.Encrypt(rng, ecies.ImportECDSAPublic(pub), plain, nil, nil)
	if err != nil {
		return ReceiverMemo{}, fmt.Errorf("encrypt memo: %w", err)
	}
	return ReceiverMemo{Ciphertext: ct}, nil
}

// DecryptMemo opens a memo addressed to k.
func (k *UserKeyPair) DecryptMemo(m ReceiverMemo) (RecordOpening, error) {
	plain, err := ecies.ImportECDSA(k.enc).Decrypt(m.Ciphertext, nil, nil)
	if err != nil {
		return RecordOpening{}, fmt.Errorf("decrypt memo: %w", err)
	}
	var ro RecordOpening
	if err := json.Unmarshal(plain, &ro); err != nil {
		return RecordOpening{}, fmt.Errorf("decode memo: %w", err)
	}
	if ro.PubKey.Address != k.Address() {
		return RecordOpening{}, ErrMemoNotOwned
	}
	return ro, nil
}

// SigningKey is a one-time key authenticating the memos of one transaction.
type SigningKey struct {
	key *ecdsa.PrivateKey
}

// GenerateSigningKey creates a fresh memo signing key.
func GenerateSigningKey() (*SigningKey, error) {
	k, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return &SigningKey{key: k}, nil
}

// VerKey is the compressed verification key embedded in the note.
func (s *SigningKey) VerKey() []byte {
	return crypto.CompressPubkey(&s.key.PublicKey)
}

// SignMemos signs the ordered memo set.
func (s *SigningKey) SignMemos(memos []ReceiverMemo) (Signature, error) {
	sig, err := crypto.Sign(memoDigest(memos), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign memos: %w", err)
	}
	return sig, nil
}

// VerifyMemos checks sig against the memo set and a note's verification key.
func VerifyMemos(verKey []byte, memos []ReceiverMemo, sig Signature) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}
	return crypto.VerifySignature(verKey, memoDigest(memos), sig[:64])
}

func memoDigest(memos []ReceiverMemo) []byte {
	parts := make([][]byte, 0, len(memos))
	for _, m := range memos {
		parts = append(parts, crypto.Keccak256(m.Ciphertext))
	}
	return crypto.Keccak256(parts...)
}
