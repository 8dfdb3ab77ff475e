// Package wallet is the ledger-agnostic wallet engine: key management,
// record bookkeeping, transfer building, memo generation and submission.
// Everything that touches wallet state goes through a Guard obtained from
// Wallet.Lock.
package wallet

import (
	"context"
	"errors"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

var (
	ErrUnknownOwner        = errors.New("no public key registered for address")
	ErrUnknownAccount      = errors.New("account not held by this wallet")
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrFragmentation means the balance is there but no record has the exact
	// amount a fixed-shape transfer needs.
	ErrFragmentation = errors.New("no single record matches the requested amount")
	ErrShapeMismatch = errors.New("transfer does not fit the requested shape")
)

// Backend is what the wallet needs from the ledger it runs against.
type Backend interface {
	// GetPublicKey resolves a user address through the ledger's address
	// book. Fails with ErrUnknownOwner.
	GetPublicKey(ctx context.Context, addr aap.UserAddress) (aap.UserPubKey, error)
	// Submit hands a transition to the ledger. Acceptance is decided when
	// the next block commits.
	Submit(ctx context.Context, t ledger.Transition, info *TransactionInfo) error
}

// KeyPublisher is implemented by backends that keep an address book.
type KeyPublisher interface {
	PublishKey(ctx context.Context, pub aap.UserPubKey) error
}

// Prover attaches a validity proof for the first output of a note to the
// note's proof-bound data.
type Prover interface {
	Prove(ro aap.RecordOpening, boundData []byte) ([]byte, error)
}
