package wallet

import (
	"github.com/yourorg/capezk/pkg/ledger"
)

// HandleBlock applies a committed block: confirmed wraps become records,
// committed transactions retire their inputs and credit outputs owned by
// this wallet, rejected transactions release their inputs.
func (s *State[B]) HandleBlock(block ledger.Block) {
	for _, w := range block.Wraps {
		s.confirmWrap(w)
	}
	for _, c := range block.Committed {
		p, ok := s.pending[c.Hash]
		if !ok {
			continue
		}
		delete(s.pending, c.Hash)
		s.removeRecords(p.inputs)
		for i, ro := range p.info.Outputs {
			// the payout of a burn leaves the private ledger
			if p.burn && i == 0 {
				continue
			}
			if ro.Amount == 0 || i >= len(c.OutputUIDs) {
				continue
			}
			if _, mine := s.keys[ro.PubKey.Address]; !mine {
				continue
			}
			if err := s.ImportRecord(ro, c.OutputUIDs[i]); err != nil {
				s.log.Warn().Err(err).Msg("import output")
			}
		}
		s.setStatus(p.entry, StatusCommitted)
		s.log.Info().Stringer("uid", c.Hash).Uint64("height", block.Height).Msg("transaction committed")
	}
	for _, r := range block.Rejected {
		p, ok := s.pending[r.Hash]
		if !ok {
			continue
		}
		delete(s.pending, r.Hash)
		s.setHeld(p.inputs, false)
		s.setStatus(p.entry, StatusRejected)
		s.log.Warn().Stringer("uid", r.Hash).Str("reason", r.Reason).Msg("transaction rejected")
	}
}

func (s *State[B]) setStatus(entry int, st TransactionStatus) {
	if entry >= 0 && entry < len(s.history) {
		s.history[entry].Status = st
	}
}
