package aap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidAssetPolicy is returned when a policy cannot be attached to an
// asset code.
var ErrInvalidAssetPolicy = errors.New("invalid asset policy")

// foreignCodeDomain separates codes derived from external descriptions from
// every other asset code derivation.
const foreignCodeDomain = "AAP foreign asset code v1"

// NumRevealAttributes is the number of record attributes an auditor can be
// granted visibility of (user address x/y, amount, blind, six credential
// attributes, freeze flag, asset code).
const NumRevealAttributes = 12

// AssetCode identifies an asset type on the private ledger.
type AssetCode [32]byte

// NativeAssetCode is the code of the ledger's fee asset.
func NativeAssetCode() AssetCode {
	return AssetCode{}
}

// NewForeignAssetCode derives an asset code from a description of an asset
// that lives outside the private ledger.
func NewForeignAssetCode(description []byte) AssetCode {
	var code AssetCode
	copy(code[:], crypto.Keccak256([]byte(foreignCodeDomain), description))
	return code
}

// IsNative reports whether c is the native fee asset code.
func (c AssetCode) IsNative() bool {
	return c == NativeAssetCode()
}

// AssetPolicy governs viewing and freezing of records of an asset.
type AssetPolicy struct {
	AuditorKey      hexutil.Bytes `json:"auditor_key,omitempty"`
	FreezerKey      hexutil.Bytes `json:"freezer_key,omitempty"`
	CredCreatorKey  hexutil.Bytes `json:"cred_creator_key,omitempty"`
	RevealMap       uint32        `json:"reveal_map"`
	RevealThreshold uint64        `json:"reveal_threshold"`
}

// IsDefault reports whether p grants no viewing or freezing capability.
func (p AssetPolicy) IsDefault() bool {
	return len(p.AuditorKey) == 0 && len(p.FreezerKey) == 0 &&
		len(p.CredCreatorKey) == 0 && p.RevealMap == 0 && p.RevealThreshold == 0
}

func (p AssetPolicy) validate() error {
	if p.RevealMap>>NumRevealAttributes != 0 {
		return fmt.Errorf("%w: reveal map %#x has bits beyond %d attributes",
			ErrInvalidAssetPolicy, p.RevealMap, NumRevealAttributes)
	}
	if len(p.AuditorKey) == 0 && (p.RevealMap != 0 || p.RevealThreshold != 0) {
		return fmt.Errorf("%w: reveal requested without an auditor key", ErrInvalidAssetPolicy)
	}
	for _, k := range []hexutil.Bytes{p.AuditorKey, p.FreezerKey, p.CredCreatorKey} {
		if len(k) == 0 {
			continue
		}
		if _, err := crypto.DecompressPubkey(k); err != nil {
			return fmt.Errorf("%w: malformed policy key: %v", ErrInvalidAssetPolicy, err)
		}
	}
	return nil
}

// encode is the canonical byte encoding used for the policy digest.
func (p AssetPolicy) encode() []byte {
	var buf bytes.Buffer
	for _, k := range [][]byte{p.AuditorKey, p.FreezerKey, p.CredCreatorKey} {
		_ = binary.Write(&buf, binary.BigEndian, uint16(len(k)))
		buf.Write(k)
	}
	_ = binary.Write(&buf, binary.BigEndian, p.RevealMap)
	_ = binary.Write(&buf, binary.BigEndian, p.RevealThreshold)
	return buf.Bytes()
}

// Digest returns a 32-byte digest of the policy.
func (p AssetPolicy) Digest() [32]byte {
	var d [32]byte
	copy(d[:], crypto.Keccak256(p.encode()))
	return d
}

// AssetDefinition is an asset code together with its policy.
type AssetDefinition struct {
	Code   AssetCode   `json:"code"`
	Policy AssetPolicy `json:"policy"`
}

// NewAssetDefinition binds policy to code. The native code only accepts the
// default policy.
func NewAssetDefinition(code AssetCode, policy AssetPolicy) (AssetDefinition, error) {
	if code.IsNative() && !policy.IsDefault() {
		return AssetDefinition{}, fmt.Errorf("%w: native asset code requires the default policy",
			ErrInvalidAssetPolicy)
	}
	if err := policy.validate(); err != nil {
		return AssetDefinition{}, err
	}
	return AssetDefinition{Code: code, Policy: policy}, nil
}

// NativeAssetDefinition is the definition of the fee asset.
func NativeAssetDefinition() AssetDefinition {
	return AssetDefinition{Code: NativeAssetCode()}
}

// AssetDefinitionKey is a comparable identity for an AssetDefinition, usable
// as a map key.
type AssetDefinitionKey struct {
	Code   AssetCode
	Policy [32]byte
}

// Key returns the comparable identity of d.
func (d AssetDefinition) Key() AssetDefinitionKey {
	return AssetDefinitionKey{Code: d.Code, Policy: d.Policy.Digest()}
}

// Equal reports whether two definitions are identical.
func (d AssetDefinition) Equal(o AssetDefinition) bool {
	return d.Key() == o.Key()
}
