package aap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Fixed-size byte values are encoded as 0x-prefixed hex in JSON snapshots
// and memos.

func marshalFixed(b []byte) ([]byte, error) {
	return []byte(hexutil.Encode(b)), nil
}

func unmarshalFixed(dst []byte, text []byte, name string) error {
	raw, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("decode %s: want %d bytes, got %d", name, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func (c AssetCode) MarshalText() ([]byte, error)     { return marshalFixed(c[:]) }
func (c *AssetCode) UnmarshalText(text []byte) error { return unmarshalFixed(c[:], text, "asset code") }
func (a UserAddress) MarshalText() ([]byte, error)   { return marshalFixed(a[:]) }
func (a *UserAddress) UnmarshalText(text []byte) error {
	return unmarshalFixed(a[:], text, "user address")
}
func (k EncryptionKey) MarshalText() ([]byte, error) { return marshalFixed(k[:]) }
func (k *EncryptionKey) UnmarshalText(text []byte) error {
	return unmarshalFixed(k[:], text, "encryption key")
}
func (n Nullifier) MarshalText() ([]byte, error)        { return marshalFixed(n[:]) }
func (n *Nullifier) UnmarshalText(text []byte) error    { return unmarshalFixed(n[:], text, "nullifier") }
func (c RecordCommitment) MarshalText() ([]byte, error) { return marshalFixed(c[:]) }
func (c *RecordCommitment) UnmarshalText(text []byte) error {
	return unmarshalFixed(c[:], text, "record commitment")
}
func (b Blind) MarshalText() ([]byte, error)     { return marshalFixed(b[:]) }
func (b *Blind) UnmarshalText(text []byte) error { return unmarshalFixed(b[:], text, "blind") }

func (c AssetCode) String() string        { return hexutil.Encode(c[:]) }
func (a UserAddress) String() string      { return hexutil.Encode(a[:]) }
func (n Nullifier) String() string        { return hexutil.Encode(n[:]) }
func (c RecordCommitment) String() string { return hexutil.Encode(c[:]) }
