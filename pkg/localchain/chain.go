// Package localchain is an in-process stand-in for the CAPE contract and
// its query service. It keeps the wrapped-asset registry, ERC20 balances,
// the address book, the nullifier set and the record commitment list, and
// applies submitted transitions when a block is committed.
package localchain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/cape"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/wallet"
)

var (
	ErrInsufficientBalance = errors.New("insufficient erc20 balance")
	ErrMalformedRecord     = errors.New("malformed record opening")
	ErrDoubleSpend         = errors.New("nullifier already published")
	ErrTokenMismatch       = errors.New("asset is backed by a different token")
	ErrInvalidBurn         = errors.New("invalid burn transaction")
	ErrInvalidProof        = errors.New("proof verification failed")
)

// Verifier checks the validity proof attached to a burn note against the
// publicly revealed payout.
type Verifier interface {
	Verify(proof []byte, cm aap.RecordCommitment, amount uint64, code aap.AssetCode, boundData []byte) error
}

// Chain is safe for concurrent use; each method is atomic.
type Chain struct {
	mu       sync.Mutex
	log      zerolog.Logger
	verifier Verifier

	height      uint64
	registry    []cape.WrappedAsset
	byDef       map[aap.AssetDefinitionKey]int
	erc20       map[ledger.Erc20Code]map[ledger.EthereumAddr]uint64
	book        map[aap.UserAddress]aap.UserPubKey
	nullifiers  map[aap.Nullifier]struct{}
	commitments []aap.RecordCommitment
	staged      []ledger.WrapTransition
	pending     []ledger.Transaction
}

type Option func(*Chain)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Chain) { c.log = l.With().Str("component", "localchain").Logger() }
}

// WithVerifier makes the chain reject burns whose proof does not verify.
func WithVerifier(v Verifier) Option { return func(c *Chain) { c.verifier = v } }

func New(opts ...Option) *Chain {
	c := &Chain{
		log:        zerolog.Nop(),
		byDef:      make(map[aap.AssetDefinitionKey]int),
		erc20:      make(map[ledger.Erc20Code]map[ledger.EthereumAddr]uint64),
		book:       make(map[aap.UserAddress]aap.UserPubKey),
		nullifiers: make(map[aap.Nullifier]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ cape.Backend        = (*Chain)(nil)
	_ wallet.KeyPublisher = (*Chain)(nil)
)

func (c *Chain) PublishKey(_ context.Context, pub aap.UserPubKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.book[pub.Address] = pub
	return nil
}

func (c *Chain) GetPublicKey(_ context.Context, addr aap.UserAddress) (aap.UserPubKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pub, ok := c.book[addr]
	if !ok {
		return aap.UserPubKey{}, fmt.Errorf("%w: %s", wallet.ErrUnknownOwner, addr)
	}
	return pub, nil
}

func (c *Chain) RegisterWrappedAsset(_ context.Context, asset aap.AssetDefinition,
	code ledger.Erc20Code, sponsor ledger.EthereumAddr) error {

	c.mu.Lock()
	defer c.mu.Unlock()
	key := asset.Key()
	if _, ok := c.byDef[key]; ok {
		return fmt.Errorf("%w: %s", cape.ErrAssetAlreadyRegistered, asset.Code)
	}
	c.byDef[key] = len(c.registry)
	c.registry = append(c.registry, cape.WrappedAsset{Definition: asset, Erc20Code: code, Sponsor: sponsor})
	c.log.Info().Stringer("asset", asset.Code).Stringer("erc20", code).Msg("asset registered")
	return nil
}

func (c *Chain) GetWrappedErc20Code(_ context.Context, asset aap.AssetDefinition) (ledger.Erc20Code, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.erc20CodeLocked(asset)
}

func (c *Chain) erc20CodeLocked(asset aap.AssetDefinition) (ledger.Erc20Code, error) {
	i, ok := c.byDef[asset.Key()]
	if !ok {
		return ledger.Erc20Code{}, fmt.Errorf("%w: %s", cape.ErrUnregisteredAsset, asset.Code)
	}
	return c.registry[i].Erc20Code, nil
}

func (c *Chain) WrappedAssets(_ context.Context) ([]cape.WrappedAsset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]cape.WrappedAsset(nil), c.registry...), nil
}

// WrapErc20 debits src right away; the record enters the ledger with the
// next CommitBlock.
func (c *Chain) WrapErc20(_ context.Context, code ledger.Erc20Code, src ledger.EthereumAddr, ro aap.RecordOpening) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wrapLocked(ledger.WrapTransition{Erc20Code: code, Src: src, Opening: ro})
}

func (c *Chain) wrapLocked(w ledger.WrapTransition) error {
	ro := w.Opening
	if err := ro.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if ro.Freeze != aap.Unfrozen {
		return fmt.Errorf("%w: wrapped records must be unfrozen", ErrMalformedRecord)
	}
	backing, err := c.erc20CodeLocked(ro.AssetDef)
	if err != nil {
		return err
	}
	if backing != w.Erc20Code {
		return fmt.Errorf("%w: %s is backed by %s, not %s", ErrTokenMismatch, ro.AssetDef.Code, backing, w.Erc20Code)
	}
	if bal := c.erc20[w.Erc20Code][w.Src]; bal < ro.Amount {
		return fmt.Errorf("%w: %s holds %d of %s, needs %d", ErrInsufficientBalance, w.Src, bal, w.Erc20Code, ro.Amount)
	}
	c.erc20[w.Erc20Code][w.Src] -= ro.Amount
	c.staged = append(c.staged, w)
	c.log.Debug().Stringer("erc20", w.Erc20Code).Stringer("src", w.Src).Uint64("amount", ro.Amount).Msg("wrap staged")
	return nil
}

// Submit queues t for the next block. Validation happens at commit time.
func (c *Chain) Submit(_ context.Context, t ledger.Transition, _ *wallet.TransactionInfo) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Wrap != nil {
		return c.wrapLocked(*t.Wrap)
	}
	c.pending = append(c.pending, *t.Transaction)
	return nil
}

// Mint credits amount of code to holder on the ERC20 side.
func (c *Chain) Mint(code ledger.Erc20Code, holder ledger.EthereumAddr, amount uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creditLocked(code, holder, amount)
}

func (c *Chain) creditLocked(code ledger.Erc20Code, holder ledger.EthereumAddr, amount uint64) {
	if c.erc20[code] == nil {
		c.erc20[code] = make(map[ledger.EthereumAddr]uint64)
	}
	c.erc20[code][holder] += amount
}

func (c *Chain) Erc20Balance(code ledger.Erc20Code, holder ledger.EthereumAddr) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.erc20[code][holder]
}

// GrantNative puts a native fee record for pub straight into the ledger and
// returns its opening and position, for the owner to import.
func (c *Chain) GrantNative(_ context.Context, pub aap.UserPubKey, amount uint64) (aap.RecordOpening, uint64, error) {
	ro, err := aap.NewRecordOpening(rand.Reader, amount, aap.NativeAssetDefinition(), pub, aap.Unfrozen)
	if err != nil {
		return aap.RecordOpening{}, 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	uid := c.appendCommitmentLocked(ro.Commitment())
	return ro, uid, nil
}

func (c *Chain) appendCommitmentLocked(cm aap.RecordCommitment) uint64 {
	c.commitments = append(c.commitments, cm)
	return uint64(len(c.commitments) - 1)
}

// Height is the number of committed blocks.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Commitment returns the record commitment at uid.
func (c *Chain) Commitment(uid uint64) (aap.RecordCommitment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uid >= uint64(len(c.commitments)) {
		return aap.RecordCommitment{}, false
	}
	return c.commitments[uid], true
}
