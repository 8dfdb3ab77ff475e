package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// RecordWrap notes a wrap the backend accepted. The record is credited by
// HandleBlock once the wrap is committed.
func (s *State[B]) RecordWrap(code ledger.Erc20Code, src ledger.EthereumAddr, ro aap.RecordOpening) PendingWrap {
	pw := &PendingWrap{
		ID:        uuid.New(),
		Erc20Code: code,
		Src:       src,
		Opening:   ro,
		Status:    WrapSubmitted,
		Submitted: time.Now(),
	}
	s.wraps = append(s.wraps, pw)
	s.history = append(s.history, TransactionHistoryEntry{
		Time:      pw.Submitted,
		Asset:     ro.AssetDef.Code,
		Kind:      ledger.KindWrap,
		Receivers: []Receiver{{Address: ro.PubKey.Address, Amount: ro.Amount}},
		Status:    StatusPending,
	})
	s.log.Info().
		Str("wrap_id", pw.ID.String()).
		Stringer("erc20", code).
		Stringer("src", src).
		Uint64("amount", ro.Amount).
		Msg("wrap submitted")
	return *pw
}

// PendingWraps returns every wrap this wallet submitted with its status.
func (s *State[B]) PendingWraps() []PendingWrap {
	out := make([]PendingWrap, 0, len(s.wraps))
	for _, pw := range s.wraps {
		out = append(out, *pw)
	}
	return out
}

func (s *State[B]) confirmWrap(w ledger.CommittedWrap) {
	cm := w.Opening.Commitment()
	for _, pw := range s.wraps {
		if pw.Status == WrapSubmitted && pw.Opening.Commitment() == cm {
			pw.Status = WrapConfirmed
			pw.UID = w.UID
			s.log.Info().Str("wrap_id", pw.ID.String()).Uint64("uid", w.UID).Msg("wrap confirmed")
			s.markWrapCommitted(pw.Opening)
			break
		}
	}
	if _, ok := s.keys[w.Opening.PubKey.Address]; ok {
		if err := s.ImportRecord(w.Opening, w.UID); err != nil {
			s.log.Warn().Err(err).Msg("import wrapped record")
		}
	}
}

func (s *State[B]) markWrapCommitted(ro aap.RecordOpening) {
	for i := range s.history {
		h := &s.history[i]
		if h.Kind != ledger.KindWrap || h.Status != StatusPending || h.Asset != ro.AssetDef.Code {
			continue
		}
		if len(h.Receivers) == 1 && h.Receivers[0].Address == ro.PubKey.Address && h.Receivers[0].Amount == ro.Amount {
			h.Status = StatusCommitted
			return
		}
	}
}
