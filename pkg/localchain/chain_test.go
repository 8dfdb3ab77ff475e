package localchain

import (
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/cape"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/wallet"
)

type ChainSuite struct {
	suite.Suite
	ctx   context.Context
	chain *Chain
	token ledger.Erc20Code
	alice ledger.EthereumAddr
	asset aap.AssetDefinition
	owner *aap.UserKeyPair
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainSuite))
}

func (s *ChainSuite) SetupTest() {
	s.ctx = context.Background()
	s.chain = New()
	s.token = ledger.HexToErc20Code("0x00000000000000000000000000000000000000e2")
	s.alice = ledger.HexToEthereumAddr("0x00000000000000000000000000000000000000a1")
	s.asset = aap.AssetDefinition{Code: aap.NewForeignAssetCode([]byte("localchain"))}

	var err error
	s.owner, err = aap.GenerateUserKeyPair()
	s.Require().NoError(err)
	s.Require().NoError(s.chain.PublishKey(s.ctx, s.owner.PubKey()))
	s.Require().NoError(s.chain.RegisterWrappedAsset(s.ctx, s.asset, s.token, s.alice))
}

func (s *ChainSuite) opening(amount uint64) aap.RecordOpening {
	ro, err := aap.NewRecordOpening(rand.Reader, amount, s.asset, s.owner.PubKey(), aap.Unfrozen)
	s.Require().NoError(err)
	return ro
}

func (s *ChainSuite) randomNullifier() aap.Nullifier {
	var nf aap.Nullifier
	_, err := rand.Read(nf[:])
	s.Require().NoError(err)
	return nf
}

func (s *ChainSuite) burn(payout aap.RecordOpening, dst ledger.EthereumAddr) ledger.Transition {
	note := &aap.TransferNote{
		InputsNullifiers:  []aap.Nullifier{s.randomNullifier(), s.randomNullifier()},
		OutputCommitments: []aap.RecordCommitment{payout.Commitment(), s.opening(1).Commitment()},
		Fee:               1,
		ProofBoundData:    ledger.BurnBoundData(dst),
		MemoVerKey:        []byte{0x02, 0x01},
	}
	return ledger.NewBurn(note, payout)
}

func (s *ChainSuite) TestRegistryUniqueness() {
	other := ledger.HexToErc20Code("0x00000000000000000000000000000000000000e3")
	err := s.chain.RegisterWrappedAsset(s.ctx, s.asset, other, s.alice)
	s.ErrorIs(err, cape.ErrAssetAlreadyRegistered)

	code, err := s.chain.GetWrappedErc20Code(s.ctx, s.asset)
	s.Require().NoError(err)
	s.Equal(s.token, code)

	assets, err := s.chain.WrappedAssets(s.ctx)
	s.Require().NoError(err)
	s.Len(assets, 1)
}

func (s *ChainSuite) TestOneTokenManyAssets() {
	second := aap.AssetDefinition{Code: aap.NewForeignAssetCode([]byte("second"))}
	s.Require().NoError(s.chain.RegisterWrappedAsset(s.ctx, second, s.token, s.alice))

	assets, err := s.chain.WrappedAssets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(assets, 2)
	s.Equal(s.asset, assets[0].Definition)
	s.Equal(second, assets[1].Definition)
}

func (s *ChainSuite) TestUnregisteredLookup() {
	_, err := s.chain.GetWrappedErc20Code(s.ctx, aap.AssetDefinition{Code: aap.NewForeignAssetCode([]byte("nope"))})
	s.ErrorIs(err, cape.ErrUnregisteredAsset)
}

func (s *ChainSuite) TestGetPublicKeyUnknown() {
	k, err := aap.GenerateUserKeyPair()
	s.Require().NoError(err)
	_, err = s.chain.GetPublicKey(s.ctx, k.Address())
	s.ErrorIs(err, wallet.ErrUnknownOwner)
}

func (s *ChainSuite) TestWrapDebitsNowCreditsAtCommit() {
	s.chain.Mint(s.token, s.alice, 100)
	ro := s.opening(30)

	s.Require().NoError(s.chain.WrapErc20(s.ctx, s.token, s.alice, ro))
	s.EqualValues(70, s.chain.Erc20Balance(s.token, s.alice))
	_, ok := s.chain.Commitment(0)
	s.False(ok)

	block, err := s.chain.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, block.Height)
	s.Require().Len(block.Wraps, 1)
	s.Equal(ro, block.Wraps[0].Opening)

	cm, ok := s.chain.Commitment(block.Wraps[0].UID)
	s.True(ok)
	s.Equal(ro.Commitment(), cm)
}

func (s *ChainSuite) TestWrapErrors() {
	s.chain.Mint(s.token, s.alice, 10)
	frozen := s.opening(5)
	frozen.Freeze = aap.Frozen
	unregistered := s.opening(5)
	unregistered.AssetDef = aap.AssetDefinition{Code: aap.NewForeignAssetCode([]byte("unregistered"))}

	tests := []struct {
		name string
		code ledger.Erc20Code
		ro   aap.RecordOpening
		want error
	}{
		{"zero amount", s.token, s.opening(0), ErrMalformedRecord},
		{"frozen", s.token, frozen, ErrMalformedRecord},
		{"unregistered", s.token, unregistered, cape.ErrUnregisteredAsset},
		{"wrong token", ledger.HexToErc20Code("0x01"), s.opening(5), ErrTokenMismatch},
		{"insufficient", s.token, s.opening(11), ErrInsufficientBalance},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			err := s.chain.WrapErc20(s.ctx, tc.code, s.alice, tc.ro)
			s.ErrorIs(err, tc.want)
			s.EqualValues(10, s.chain.Erc20Balance(s.token, s.alice))
		})
	}
}

func (s *ChainSuite) TestBurnPaysOut() {
	dst := ledger.HexToEthereumAddr("0x00000000000000000000000000000000000000d5")
	payout := s.opening(40)
	t := s.burn(payout, dst)

	s.Require().NoError(s.chain.Submit(s.ctx, t, nil))
	s.Zero(s.chain.Erc20Balance(s.token, dst))

	block, err := s.chain.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(block.Committed, 1)
	s.Equal(ledger.KindBurn, block.Committed[0].Kind)
	s.Len(block.Committed[0].OutputUIDs, 2)
	s.EqualValues(40, s.chain.Erc20Balance(s.token, dst))
}

func (s *ChainSuite) TestDoubleSpendRejected() {
	dst := ledger.HexToEthereumAddr("0x00000000000000000000000000000000000000d5")
	first := s.burn(s.opening(5), dst)
	second := s.burn(s.opening(5), dst)
	second.Transaction.Note.InputsNullifiers[0] = first.Transaction.Note.InputsNullifiers[1]

	s.Require().NoError(s.chain.Submit(s.ctx, first, nil))
	s.Require().NoError(s.chain.Submit(s.ctx, second, nil))
	block, err := s.chain.CommitBlock(s.ctx)
	s.Require().NoError(err)

	s.Len(block.Committed, 1)
	s.Require().Len(block.Rejected, 1)
	s.Equal(second.Transaction.Hash(), block.Rejected[0].Hash)
	s.Contains(block.Rejected[0].Reason, ErrDoubleSpend.Error())
	s.EqualValues(5, s.chain.Erc20Balance(s.token, dst))
}

func (s *ChainSuite) TestInvalidBurnRejected() {
	dst := ledger.HexToEthereumAddr("0x00000000000000000000000000000000000000d5")

	mismatched := s.burn(s.opening(5), dst)
	other := s.opening(5)
	mismatched.Transaction.BurnOpening = &other

	badData := s.burn(s.opening(5), dst)
	badData.Transaction.Note.ProofBoundData = []byte("not a burn")

	for _, t := range []ledger.Transition{mismatched, badData} {
		s.Require().NoError(s.chain.Submit(s.ctx, t, nil))
	}
	block, err := s.chain.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.Empty(block.Committed)
	s.Require().Len(block.Rejected, 2)
	for _, r := range block.Rejected {
		s.True(strings.HasPrefix(r.Reason, ErrInvalidBurn.Error()), r.Reason)
	}
	s.Zero(s.chain.Erc20Balance(s.token, dst))
}

type rejectAll struct{}

func (rejectAll) Verify([]byte, aap.RecordCommitment, uint64, aap.AssetCode, []byte) error {
	return errors.New("bad proof")
}

func (s *ChainSuite) TestVerifierRejects() {
	chain := New(WithVerifier(rejectAll{}))
	s.Require().NoError(chain.RegisterWrappedAsset(s.ctx, s.asset, s.token, s.alice))
	s.Require().NoError(chain.Submit(s.ctx, s.burn(s.opening(5), s.alice), nil))

	block, err := chain.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(block.Rejected, 1)
	s.Contains(block.Rejected[0].Reason, ErrInvalidProof.Error())
}

func (s *ChainSuite) TestSubmitRejectsEmptyTransition() {
	s.Error(s.chain.Submit(s.ctx, ledger.Transition{}, nil))
}

func (s *ChainSuite) TestCommitBlockCancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.chain.CommitBlock(ctx)
	s.ErrorIs(err, context.Canceled)
	s.Zero(s.chain.Height())
}

func (s *ChainSuite) TestGrantNative() {
	ro, uid, err := s.chain.GrantNative(s.ctx, s.owner.PubKey(), 50)
	s.Require().NoError(err)
	s.True(ro.AssetDef.Code.IsNative())
	cm, ok := s.chain.Commitment(uid)
	s.True(ok)
	s.Equal(ro.Commitment(), cm)
}

func (s *ChainSuite) TestSnapshotRoundTrip() {
	s.chain.Mint(s.token, s.alice, 100)
	s.Require().NoError(s.chain.WrapErc20(s.ctx, s.token, s.alice, s.opening(10)))
	_, err := s.chain.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.chain.WrapErc20(s.ctx, s.token, s.alice, s.opening(20)))
	s.Require().NoError(s.chain.Submit(s.ctx, s.burn(s.opening(3), s.alice), nil))

	path := filepath.Join(s.T().TempDir(), "chain.json")
	s.Require().NoError(s.chain.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	s.Require().NoError(err)
	s.Equal(s.chain.snapshotLocked(), loaded.snapshotLocked())

	// the restored chain keeps enforcing uniqueness and settles staged work
	s.ErrorIs(loaded.RegisterWrappedAsset(s.ctx, s.asset, s.token, s.alice), cape.ErrAssetAlreadyRegistered)
	block, err := loaded.CommitBlock(s.ctx)
	s.Require().NoError(err)
	s.Len(block.Wraps, 1)
	s.Len(block.Committed, 1)
	s.EqualValues(73, loaded.Erc20Balance(s.token, s.alice))
}

func (s *ChainSuite) TestSaveToFileReportsWriteErrors() {
	// every write to /dev/full fails with ENOSPC
	if _, err := os.Stat("/dev/full"); err != nil {
		s.T().Skip("no /dev/full")
	}
	s.chain.Mint(s.token, s.alice, 1)
	s.Require().ErrorContains(s.chain.SaveToFile("/dev/full"), "write chain snapshot")
}

func (s *ChainSuite) TestLoadMissingFile() {
	_, err := LoadFromFile(filepath.Join(s.T().TempDir(), "missing.json"))
	s.Error(err)
}

func (s *ChainSuite) TestBalancesSkipsEmpty() {
	bob := ledger.HexToEthereumAddr("0x00000000000000000000000000000000000000b0")
	s.chain.Mint(s.token, s.alice, 5)
	s.chain.Mint(s.token, bob, 7)
	s.Require().NoError(s.chain.WrapErc20(s.ctx, s.token, s.alice, s.opening(5)))

	s.Equal([]Erc20Balance{{Code: s.token, Holder: bob, Amount: 7}}, s.chain.Balances())
}
