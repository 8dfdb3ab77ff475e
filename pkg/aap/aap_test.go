package aap

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) *UserKeyPair {
	t.Helper()
	k, err := GenerateUserKeyPair()
	require.NoError(t, err)
	return k
}

func mustOpening(t *testing.T, amount uint64, owner *UserKeyPair) RecordOpening {
	t.Helper()
	asset, err := NewAssetDefinition(NewForeignAssetCode([]byte("test asset")), AssetPolicy{})
	require.NoError(t, err)
	ro, err := NewRecordOpening(rand.Reader, amount, asset, owner.PubKey(), Unfrozen)
	require.NoError(t, err)
	return ro
}

func TestForeignAssetCode(t *testing.T) {
	a := NewForeignAssetCode([]byte("token A"))
	require.Equal(t, a, NewForeignAssetCode([]byte("token A")))
	require.NotEqual(t, a, NewForeignAssetCode([]byte("token B")))
	require.False(t, a.IsNative())

	// The domain separator keeps foreign codes apart from a plain hash of
	// the same description.
	var plain AssetCode
	copy(plain[:], crypto.Keccak256([]byte("token A")))
	require.NotEqual(t, plain, a)
}

func TestNewAssetDefinition(t *testing.T) {
	auditor := mustKey(t).PubKey()
	code := NewForeignAssetCode([]byte("token"))

	tests := []struct {
		name    string
		code    AssetCode
		policy  AssetPolicy
		wantErr bool
	}{
		{"default policy", code, AssetPolicy{}, false},
		{"native default", NativeAssetCode(), AssetPolicy{}, false},
		{"native with policy", NativeAssetCode(), AssetPolicy{RevealThreshold: 10, AuditorKey: auditor.Address[:]}, true},
		{"reveal without auditor", code, AssetPolicy{RevealMap: 0b101}, true},
		{"threshold without auditor", code, AssetPolicy{RevealThreshold: 1}, true},
		{"reveal map out of range", code, AssetPolicy{RevealMap: 1 << NumRevealAttributes, AuditorKey: auditor.Address[:]}, true},
		{"malformed freezer key", code, AssetPolicy{FreezerKey: []byte{1, 2, 3}}, true},
		{"auditor reveal", code, AssetPolicy{RevealMap: 0b11, AuditorKey: auditor.Address[:]}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def, err := NewAssetDefinition(tc.code, tc.policy)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidAssetPolicy)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.code, def.Code)
		})
	}
}

func TestAssetDefinitionKey(t *testing.T) {
	code := NewForeignAssetCode([]byte("token"))
	auditor := mustKey(t).PubKey()

	a := AssetDefinition{Code: code}
	b := AssetDefinition{Code: code, Policy: AssetPolicy{AuditorKey: auditor.Address[:]}}
	require.True(t, a.Equal(AssetDefinition{Code: code}))
	require.False(t, a.Equal(b))
	require.NotEqual(t, a.Key(), b.Key())
}

func TestRecordCommitment(t *testing.T) {
	owner := mustKey(t)
	ro := mustOpening(t, 100, owner)

	cm := ro.Commitment()
	require.Equal(t, cm, ro.Commitment())

	// The blind is stored in canonical form.
	f := ro.Fields()
	require.Equal(t, [32]byte(ro.Blind), f.Blind.Bytes())

	changed := ro
	changed.Amount = 101
	require.NotEqual(t, cm, changed.Commitment())

	frozen := ro
	frozen.Freeze = Frozen
	require.NotEqual(t, cm, frozen.Commitment())

	other := mustOpening(t, 100, owner)
	require.NotEqual(t, cm, other.Commitment(), "fresh blinds hide equal amounts")
}

func TestRecordOpeningValidate(t *testing.T) {
	ro := mustOpening(t, 5, mustKey(t))
	require.NoError(t, ro.Validate())

	ro.Amount = 0
	require.Error(t, ro.Validate())
}

func TestNullifier(t *testing.T) {
	owner := mustKey(t)
	cm := mustOpening(t, 1, owner).Commitment()

	n := owner.Nullify(cm, 7)
	require.Equal(t, n, owner.Nullify(cm, 7))
	require.NotEqual(t, n, owner.Nullify(cm, 8))
	require.NotEqual(t, n, mustKey(t).Nullify(cm, 7))
}

func TestReceiverMemo(t *testing.T) {
	owner := mustKey(t)
	ro := mustOpening(t, 42, owner)

	memo, err := NewReceiverMemo(rand.Reader, ro)
	require.NoError(t, err)

	got, err := owner.DecryptMemo(memo)
	require.NoError(t, err)
	require.Equal(t, ro, got)
	require.Equal(t, ro.Commitment(), got.Commitment())

	_, err = mustKey(t).DecryptMemo(memo)
	require.Error(t, err)
}

func TestMemoSignature(t *testing.T) {
	ro := mustOpening(t, 3, mustKey(t))
	memo, err := NewReceiverMemo(rand.Reader, ro)
	require.NoError(t, err)

	sk, err := GenerateSigningKey()
	require.NoError(t, err)
	sig, err := sk.SignMemos([]ReceiverMemo{memo})
	require.NoError(t, err)

	require.True(t, VerifyMemos(sk.VerKey(), []ReceiverMemo{memo}, sig))
	require.False(t, VerifyMemos(sk.VerKey(), nil, sig))

	other, err := GenerateSigningKey()
	require.NoError(t, err)
	require.False(t, VerifyMemos(other.VerKey(), []ReceiverMemo{memo}, sig))
}

func TestNoteHashIgnoresProof(t *testing.T) {
	note := &TransferNote{
		InputsNullifiers:  []Nullifier{{1}, {2}},
		OutputCommitments: []RecordCommitment{{3}, {4}},
		Fee:               1,
		ProofBoundData:    []byte("bound"),
	}
	h := note.Hash()

	note.Proof = []byte{0xde, 0xad}
	require.Equal(t, h, note.Hash())

	note.ProofBoundData = []byte("other")
	require.NotEqual(t, h, note.Hash())
}

func TestRecordOpeningJSON(t *testing.T) {
	ro := mustOpening(t, 9, mustKey(t))
	raw, err := json.Marshal(ro)
	require.NoError(t, err)

	var back RecordOpening
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, ro.Commitment(), back.Commitment())
}
