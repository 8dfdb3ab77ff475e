package circuits_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/capezk/circuits"
	"github.com/yourorg/capezk/pkg/aap"
)

func opening(t *testing.T, amount uint64) aap.RecordOpening {
	t.Helper()
	k, err := aap.GenerateUserKeyPair()
	require.NoError(t, err)
	asset, err := aap.NewAssetDefinition(aap.NewForeignAssetCode([]byte("circuit test")), aap.AssetPolicy{})
	require.NoError(t, err)
	ro, err := aap.NewRecordOpening(rand.Reader, amount, asset, k.PubKey(), aap.Unfrozen)
	require.NoError(t, err)
	return ro
}

func TestRecordOpeningCorrect(t *testing.T) {
	assert := test.NewAssert(t)

	ro := opening(t, 100)
	w := circuits.Assign(ro, []byte("TRICAPE burn destination"))

	assert.ProverSucceeded(new(circuits.RecordOpeningCircuit), w, test.WithCurves(circuits.Curve()))
}

func TestRecordOpeningWrongAmount(t *testing.T) {
	assert := test.NewAssert(t)

	ro := opening(t, 100)
	w := circuits.Assign(ro, []byte("bound"))
	w.Amount = big.NewInt(101)

	assert.ProverFailed(new(circuits.RecordOpeningCircuit), w, test.WithCurves(circuits.Curve()))
}

func TestRecordOpeningWrongBlind(t *testing.T) {
	assert := test.NewAssert(t)

	ro := opening(t, 7)
	w := circuits.Assign(ro, []byte("bound"))
	w.Blind = big.NewInt(1)

	assert.ProverFailed(new(circuits.RecordOpeningCircuit), w, test.WithCurves(circuits.Curve()))
}

func TestAssignPublicMatchesAssign(t *testing.T) {
	ro := opening(t, 55)
	bound := []byte("bound")

	full := circuits.Assign(ro, bound)
	pub := circuits.AssignPublic(ro.Commitment(), ro.Amount, ro.AssetDef.Code, bound)

	require.Equal(t, full.Commitment, pub.Commitment)
	require.Equal(t, full.Amount, pub.Amount)
	require.Equal(t, full.AssetCode, pub.AssetCode)
	require.Equal(t, full.BoundDataHash, pub.BoundDataHash)
}
