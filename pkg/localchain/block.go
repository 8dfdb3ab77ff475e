package localchain

import (
	"context"
	"fmt"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// CommitBlock applies everything staged since the previous block: wrapped
// records enter the ledger, queued transactions are validated in
// submission order and either committed or rejected. Committed burns credit
// the payout to the destination named in their bound data.
func (c *Chain) CommitBlock(ctx context.Context) (ledger.Block, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Block{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.height++
	block := ledger.Block{Height: c.height}

	for _, w := range c.staged {
		uid := c.appendCommitmentLocked(w.Opening.Commitment())
		block.Wraps = append(block.Wraps, ledger.CommittedWrap{Opening: w.Opening, UID: uid})
	}
	c.staged = nil

	for _, txn := range c.pending {
		hash := txn.Hash()
		if err := c.checkLocked(txn); err != nil {
			block.Rejected = append(block.Rejected, ledger.RejectedTransaction{Hash: hash, Reason: err.Error()})
			c.log.Warn().Err(err).Stringer("uid", hash).Msg("transaction rejected")
			continue
		}
		for _, nf := range txn.Note.InputsNullifiers {
			c.nullifiers[nf] = struct{}{}
		}
		committed := ledger.CommittedTransaction{Hash: hash, Kind: txn.Kind()}
		for _, cm := range txn.Note.OutputCommitments {
			committed.OutputUIDs = append(committed.OutputUIDs, c.appendCommitmentLocked(cm))
		}
		if txn.IsBurn() {
			c.payoutLocked(txn)
		}
		block.Committed = append(block.Committed, committed)
	}
	c.pending = nil

	c.log.Info().
		Uint64("height", block.Height).
		Int("wraps", len(block.Wraps)).
		Int("committed", len(block.Committed)).
		Int("rejected", len(block.Rejected)).
		Msg("block committed")
	return block, nil
}

func (c *Chain) checkLocked(txn ledger.Transaction) error {
	seen := make(map[aap.Nullifier]struct{}, len(txn.Note.InputsNullifiers))
	for _, nf := range txn.Note.InputsNullifiers {
		if _, ok := c.nullifiers[nf]; ok {
			return fmt.Errorf("%w: %s", ErrDoubleSpend, nf)
		}
		if _, ok := seen[nf]; ok {
			return fmt.Errorf("%w: %s repeated in note", ErrDoubleSpend, nf)
		}
		seen[nf] = struct{}{}
	}
	if txn.IsBurn() {
		return c.checkBurnLocked(txn)
	}
	return nil
}

func (c *Chain) checkBurnLocked(txn ledger.Transaction) error {
	note, ro := txn.Note, txn.BurnOpening
	if len(note.InputsNullifiers) != 2 || len(note.OutputCommitments) != 2 {
		return fmt.Errorf("%w: shape %d/%d", ErrInvalidBurn, len(note.InputsNullifiers), len(note.OutputCommitments))
	}
	if _, err := ledger.ParseBurnBoundData(note.ProofBoundData); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBurn, err)
	}
	if ro.Commitment() != note.OutputCommitments[0] {
		return fmt.Errorf("%w: opening does not match first output", ErrInvalidBurn)
	}
	if _, err := c.erc20CodeLocked(ro.AssetDef); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBurn, err)
	}
	if c.verifier != nil {
		if err := c.verifier.Verify(note.Proof, note.OutputCommitments[0], ro.Amount, ro.AssetDef.Code, note.ProofBoundData); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
	}
	return nil
}

func (c *Chain) payoutLocked(txn ledger.Transaction) {
	// both were checked before commit
	dst, _ := ledger.ParseBurnBoundData(txn.Note.ProofBoundData)
	code, _ := c.erc20CodeLocked(txn.BurnOpening.AssetDef)
	c.creditLocked(code, dst, txn.BurnOpening.Amount)
	c.log.Info().Stringer("erc20", code).Stringer("dst", dst).Uint64("amount", txn.BurnOpening.Amount).Msg("burn paid out")
}
