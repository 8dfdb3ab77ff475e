package cape

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/wallet"
)

// burnShape is the only note shape the contract accepts for burns: the
// burned record plus a fee input, the payout plus the fee change.
var burnShape = wallet.TransferShape{Inputs: 2, Outputs: 2}

// Burn withdraws amount of asset held by account to dst on the public
// chain. account needs a single record of exactly amount and a native
// record covering fee.
func (w *Wallet[B]) Burn(ctx context.Context, account aap.UserAddress, dst ledger.EthereumAddr,
	asset aap.AssetCode, amount, fee uint64) (receipt *wallet.TransactionReceipt, err error) {

	defer w.observe("burn", time.Now(), &err)

	g, err := w.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Release()

	// The payout owner is ignored by the contract; any address works, so
	// the burner's own is used.
	xfr, err := g.BuildTransfer(ctx, account, asset,
		[]wallet.Receiver{{Address: account, Amount: amount}},
		fee, ledger.BurnBoundData(dst), &burnShape)
	if err != nil {
		return nil, err
	}
	checkBurnTransfer(xfr)

	// only the fee change stays on the private ledger
	memos, sig, err := g.GenerateMemos([]aap.RecordOpening{*xfr.FeeOutput}, xfr.SigKey)
	if err != nil {
		return nil, err
	}
	history := xfr.History
	history.Kind = ledger.KindBurn
	info := &wallet.TransactionInfo{
		Account: xfr.OwnerAddress,
		Memos:   memos,
		Sig:     sig,
		History: &history,
		Inputs:  xfr.Inputs,
		Outputs: xfr.Outputs,
	}

	receipt, err = g.Submit(ctx, ledger.NewBurn(xfr.Note, xfr.Outputs[0]), info)
	if err != nil {
		return nil, err
	}
	w.metrics.AddVolume("burn", amount)
	w.log.Info().
		Stringer("uid", receipt.UID).
		Stringer("dst", dst).
		Stringer("asset", asset).
		Uint64("amount", amount).
		Msg("burn submitted")
	return receipt, nil
}

func checkBurnTransfer(xfr *wallet.TransferInfo) {
	if xfr.FeeOutput == nil {
		panic(InternalFault{Op: "burn", Reason: "transfer has no fee change output"})
	}
	if n := len(xfr.Note.InputsNullifiers); n != burnShape.Inputs {
		panic(InternalFault{Op: "burn", Reason: fmt.Sprintf("note has %d nullifiers", n)})
	}
	if n := len(xfr.Note.OutputCommitments); n != burnShape.Outputs {
		panic(InternalFault{Op: "burn", Reason: fmt.Sprintf("note has %d output commitments", n)})
	}
}
