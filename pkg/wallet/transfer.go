package wallet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// BuildTransfer assembles a note spending account's records of code to the
// receivers, paying fee in the native asset.
//
// With a shape, the asset side must be covered by one record whose amount
// equals the total sent, so no asset change output is created. A fee
// change output is always created and is the last output. An unshaped
// transfer of the native asset pays the fee from the same inputs, and the
// fee change output is then its only change.
func (s *State[B]) BuildTransfer(ctx context.Context, account aap.UserAddress, code aap.AssetCode,
	receivers []Receiver, fee uint64, boundData []byte, shape *TransferShape) (*TransferInfo, error) {

	key, ok := s.keys[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}
	if len(receivers) == 0 {
		return nil, errors.New("transfer has no receivers")
	}
	var total uint64
	for _, r := range receivers {
		if r.Amount == 0 {
			return nil, errors.New("receiver amount must be positive")
		}
		if total > math.MaxUint64-r.Amount {
			return nil, errors.New("transfer total overflows")
		}
		total += r.Amount
	}

	pubs := make([]aap.UserPubKey, len(receivers))
	for i, r := range receivers {
		pub, err := s.PubKey(ctx, r.Address)
		if err != nil {
			return nil, fmt.Errorf("receiver %s: %w", r.Address, err)
		}
		pubs[i] = pub
	}

	// native transfers without a shape share one input pool
	pooled := code.IsNative() && shape == nil
	need := total
	if pooled {
		if need > math.MaxUint64-fee {
			return nil, errors.New("transfer total overflows")
		}
		need += fee
	}
	assetIn, change, err := s.selectAsset(account, code, need, shape != nil)
	if err != nil {
		return nil, err
	}
	var feeIn *ownedRecord
	if !pooled {
		if feeIn, err = s.selectFee(account, fee, assetIn); err != nil {
			return nil, err
		}
	}

	own := key.PubKey()
	def := assetIn[0].ro.AssetDef
	var outputs []aap.RecordOpening
	for i, r := range receivers {
		ro, err := aap.NewRecordOpening(s.rng, r.Amount, def, pubs[i], aap.Unfrozen)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, ro)
	}
	if change > 0 && !pooled {
		ro, err := aap.NewRecordOpening(s.rng, change, def, own, aap.Unfrozen)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, ro)
	}
	feeDef, feeChangeAmount := def, change
	if !pooled {
		feeDef, feeChangeAmount = feeIn.ro.AssetDef, feeIn.ro.Amount-fee
	}
	feeChange, err := aap.NewRecordOpening(s.rng, feeChangeAmount, feeDef, own, aap.Unfrozen)
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, feeChange)

	spent := assetIn
	if feeIn != nil {
		spent = append(spent, feeIn)
	}
	if shape != nil && (len(spent) != shape.Inputs || len(outputs) != shape.Outputs) {
		return nil, fmt.Errorf("%w: %d inputs, %d outputs, want %d, %d",
			ErrShapeMismatch, len(spent), len(outputs), shape.Inputs, shape.Outputs)
	}

	sigKey, err := aap.GenerateSigningKey()
	if err != nil {
		return nil, err
	}
	note := &aap.TransferNote{
		Fee:            fee,
		ProofBoundData: boundData,
		MemoVerKey:     sigKey.VerKey(),
	}
	inputs := make([]aap.RecordOpening, 0, len(spent))
	nullifiers := make([]aap.Nullifier, 0, len(spent))
	for _, r := range spent {
		inputs = append(inputs, r.ro)
		nullifiers = append(nullifiers, r.nullifier)
	}
	note.InputsNullifiers = nullifiers
	for _, ro := range outputs {
		note.OutputCommitments = append(note.OutputCommitments, ro.Commitment())
	}
	if s.prover != nil {
		proof, err := s.prover.Prove(outputs[0], boundData)
		if err != nil {
			return nil, fmt.Errorf("prove transfer: %w", err)
		}
		note.Proof = proof
	}

	sender := account
	return &TransferInfo{
		Note:         note,
		SigKey:       sigKey,
		OwnerAddress: account,
		FeeOutput:    &feeChange,
		Inputs:       inputs,
		Outputs:      outputs,
		History: TransactionHistoryEntry{
			Time:      time.Now(),
			Asset:     code,
			Kind:      ledger.KindSend,
			Sender:    &sender,
			Receivers: append([]Receiver(nil), receivers...),
			Status:    StatusPending,
		},
	}, nil
}

func (s *State[B]) selectAsset(account aap.UserAddress, code aap.AssetCode, total uint64,
	exact bool) ([]*ownedRecord, uint64, error) {

	recs := s.spendable(account, code)
	var available uint64
	for _, r := range recs {
		available += r.ro.Amount
	}
	if available < total {
		return nil, 0, fmt.Errorf("%w: have %d of %s, need %d", ErrInsufficientBalance, available, code, total)
	}
	if exact {
		for i := len(recs) - 1; i >= 0; i-- {
			if recs[i].ro.Amount == total {
				return []*ownedRecord{recs[i]}, 0, nil
			}
		}
		return nil, 0, fmt.Errorf("%w: %d of %s", ErrFragmentation, total, code)
	}
	var (
		picked []*ownedRecord
		sum    uint64
	)
	for _, r := range recs {
		picked = append(picked, r)
		sum += r.ro.Amount
		if sum >= total {
			break
		}
	}
	return picked, sum - total, nil
}

// selectFee picks the smallest native record covering fee that is not
// already used on the asset side.
func (s *State[B]) selectFee(account aap.UserAddress, fee uint64, used []*ownedRecord) (*ownedRecord, error) {
	recs := s.spendable(account, aap.NativeAssetCode())
	var best *ownedRecord
outer:
	for _, r := range recs {
		for _, u := range used {
			if u == r {
				continue outer
			}
		}
		if r.ro.Amount >= fee && (best == nil || r.ro.Amount < best.ro.Amount) {
			best = r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no native record covers fee %d", ErrInsufficientBalance, fee)
	}
	return best, nil
}

// GenerateMemos encrypts each output to its owner and signs the memo set
// with the note's one-time key.
func (s *State[B]) GenerateMemos(outputs []aap.RecordOpening, sigKey *aap.SigningKey) ([]aap.ReceiverMemo, aap.Signature, error) {
	memos := make([]aap.ReceiverMemo, 0, len(outputs))
	for _, ro := range outputs {
		m, err := aap.NewReceiverMemo(s.rng, ro)
		if err != nil {
			return nil, nil, fmt.Errorf("encrypt memo: %w", err)
		}
		memos = append(memos, m)
	}
	sig, err := sigKey.SignMemos(memos)
	if err != nil {
		return nil, nil, fmt.Errorf("sign memos: %w", err)
	}
	return memos, sig, nil
}

// Submit hands a transaction transition to the backend. On success the
// spent records are held until the transaction's block commits.
func (s *State[B]) Submit(ctx context.Context, t ledger.Transition, info *TransactionInfo) (*TransactionReceipt, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Transaction == nil {
		return nil, errors.New("only transactions are submitted through the wallet")
	}
	hash := t.Transaction.Hash()
	info.UID = &hash

	if err := s.backend.Submit(ctx, t, info); err != nil {
		return nil, err
	}

	nfs := t.Transaction.Note.InputsNullifiers
	s.setHeld(nfs, true)

	receipt := &TransactionReceipt{UID: hash, Submitter: info.Account}
	if len(nfs) > 0 {
		receipt.FeeNullifier = nfs[len(nfs)-1]
	}
	entry := -1
	if info.History != nil {
		h := *info.History
		h.Receipt = receipt
		h.Status = StatusPending
		s.history = append(s.history, h)
		entry = len(s.history) - 1
	}
	s.pending[hash] = &pendingTxn{
		info:   info,
		inputs: append([]aap.Nullifier(nil), nfs...),
		burn:   t.Transaction.IsBurn(),
		entry:  entry,
	}
	s.log.Info().
		Stringer("uid", hash).
		Stringer("account", info.Account).
		Str("kind", string(t.Transaction.Kind())).
		Int("inputs", len(nfs)).
		Msg("transaction submitted")
	return receipt, nil
}

// Transfer sends code from account to the receivers.
func (s *State[B]) Transfer(ctx context.Context, account aap.UserAddress, code aap.AssetCode,
	receivers []Receiver, fee uint64) (*TransactionReceipt, error) {

	xfr, err := s.BuildTransfer(ctx, account, code, receivers, fee, nil, nil)
	if err != nil {
		return nil, err
	}
	memos, sig, err := s.GenerateMemos(xfr.Outputs, xfr.SigKey)
	if err != nil {
		return nil, err
	}
	info := &TransactionInfo{
		Account: xfr.OwnerAddress,
		Memos:   memos,
		Sig:     sig,
		History: &xfr.History,
		Inputs:  xfr.Inputs,
		Outputs: xfr.Outputs,
	}
	return s.Submit(ctx, ledger.NewTransfer(xfr.Note), info)
}
