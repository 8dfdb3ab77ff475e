package aap

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
)

// UserAddress is a user's compressed secp256k1 spend verification key.
type UserAddress [33]byte

// EncryptionKey is a user's compressed secp256k1 memo encryption key.
type EncryptionKey [33]byte

// UserPubKey is everything a sender needs to create a record for a user.
type UserPubKey struct {
	Address UserAddress   `json:"address"`
	EncKey  EncryptionKey `json:"enc_key"`
}

// UserKeyPair holds a user's spend key and memo decryption key.
type UserKeyPair struct {
	spend *ecdsa.PrivateKey
	enc   *ecdsa.PrivateKey
}

// GenerateUserKeyPair creates a fresh key pair.
func GenerateUserKeyPair() (*UserKeyPair, error) {
	spend, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate spend key: %w", err)
	}
	enc, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}
	return &UserKeyPair{spend: spend, enc: enc}, nil
}

// Address returns the user's address.
func (k *UserKeyPair) Address() UserAddress {
	var a UserAddress
	copy(a[:], crypto.CompressPubkey(&k.spend.PublicKey))
	return a
}

// PubKey returns the public half of the key pair.
func (k *UserKeyPair) PubKey() UserPubKey {
	var e EncryptionKey
	copy(e[:], crypto.CompressPubkey(&k.enc.PublicKey))
	return UserPubKey{Address: k.Address(), EncKey: e}
}

// Nullify computes the nullifier of the record with commitment cm and ledger
// position uid. Only the owner of the spend key can compute it.
func (k *UserKeyPair) Nullify(cm RecordCommitment, uid uint64) Nullifier {
	var u fr.Element
	u.SetUint64(uid)
	return Nullifier(mimcHash(
		toField(crypto.FromECDSA(k.spend)),
		toField(cm[:]),
		u,
	))
}

// ownerField maps an address to the field element committed in records.
func ownerField(a UserAddress) fr.Element {
	return keccakToField(a[:])
}
