package wallet

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// State is the wallet's mutable state. It is only reachable through a Guard.
type State[B Backend] struct {
	backend B
	rng     io.Reader
	prover  Prover
	log     zerolog.Logger

	keys    map[aap.UserAddress]*aap.UserKeyPair
	records []*ownedRecord
	pending map[ledger.TransactionHash]*pendingTxn
	wraps   []*PendingWrap
	history []TransactionHistoryEntry
}

// ownedRecord is an unspent record the wallet can nullify.
type ownedRecord struct {
	ro        aap.RecordOpening
	uid       uint64
	nullifier aap.Nullifier
	// held while a transaction spending it awaits its block
	held bool
}

type pendingTxn struct {
	info   *TransactionInfo
	inputs []aap.Nullifier
	burn   bool
	entry  int
}

func (s *State[B]) Backend() B      { return s.backend }
func (s *State[B]) Rand() io.Reader { return s.rng }

// GenerateUserKey creates a key pair, keeps it in the wallet and publishes
// the public half when the backend has an address book.
func (s *State[B]) GenerateUserKey(ctx context.Context) (aap.UserPubKey, error) {
	k, err := aap.GenerateUserKeyPair()
	if err != nil {
		return aap.UserPubKey{}, err
	}
	pub := k.PubKey()
	if p, ok := any(s.backend).(KeyPublisher); ok {
		if err := p.PublishKey(ctx, pub); err != nil {
			return aap.UserPubKey{}, fmt.Errorf("publish key: %w", err)
		}
	}
	s.keys[pub.Address] = k
	s.log.Debug().Stringer("address", pub.Address).Msg("generated user key")
	return pub, nil
}

// PubKey resolves addr, preferring the wallet's own keys over the backend.
func (s *State[B]) PubKey(ctx context.Context, addr aap.UserAddress) (aap.UserPubKey, error) {
	if k, ok := s.keys[addr]; ok {
		return k.PubKey(), nil
	}
	return s.backend.GetPublicKey(ctx, addr)
}

// ImportRecord adds a record at ledger position uid to the wallet. The owner
// must be one of the wallet's accounts.
func (s *State[B]) ImportRecord(ro aap.RecordOpening, uid uint64) error {
	k, ok := s.keys[ro.PubKey.Address]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, ro.PubKey.Address)
	}
	nf := k.Nullify(ro.Commitment(), uid)
	for _, r := range s.records {
		if r.nullifier == nf {
			return nil
		}
	}
	s.records = append(s.records, &ownedRecord{ro: ro, uid: uid, nullifier: nf})
	s.log.Debug().
		Stringer("owner", ro.PubKey.Address).
		Stringer("asset", ro.AssetDef.Code).
		Uint64("amount", ro.Amount).
		Uint64("uid", uid).
		Msg("record added")
	return nil
}

// Balance is the spendable amount of code held by addr. Records on hold
// and frozen records do not count.
func (s *State[B]) Balance(addr aap.UserAddress, code aap.AssetCode) uint64 {
	var total uint64
	for _, r := range s.spendable(addr, code) {
		total += r.ro.Amount
	}
	return total
}

// spendable returns the usable records of addr for code, largest first.
func (s *State[B]) spendable(addr aap.UserAddress, code aap.AssetCode) []*ownedRecord {
	var out []*ownedRecord
	for _, r := range s.records {
		if r.held || r.ro.Freeze != aap.Unfrozen {
			continue
		}
		if r.ro.PubKey.Address != addr || r.ro.AssetDef.Code != code {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ro.Amount > out[j].ro.Amount })
	return out
}

// History returns a copy of the transaction history, oldest first.
func (s *State[B]) History() []TransactionHistoryEntry {
	return append([]TransactionHistoryEntry(nil), s.history...)
}

func (s *State[B]) removeRecords(nfs []aap.Nullifier) {
	drop := make(map[aap.Nullifier]struct{}, len(nfs))
	for _, nf := range nfs {
		drop[nf] = struct{}{}
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if _, ok := drop[r.nullifier]; !ok {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

func (s *State[B]) setHeld(nfs []aap.Nullifier, held bool) {
	for _, nf := range nfs {
		for _, r := range s.records {
			if r.nullifier == nf {
				r.held = held
			}
		}
	}
}
