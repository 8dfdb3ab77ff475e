package wallet

import (
	"context"
	"crypto/rand"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// Wallet serializes every operation on its State behind a single permit.
type Wallet[B Backend] struct {
	sem   *semaphore.Weighted
	state *State[B]
}

type options struct {
	rng    io.Reader
	prover Prover
	log    zerolog.Logger
}

type Option func(*options)

// WithRand replaces crypto/rand as the source of record blinds.
func WithRand(r io.Reader) Option { return func(o *options) { o.rng = r } }

func WithProver(p Prover) Option { return func(o *options) { o.prover = p } }

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// New creates an empty wallet on top of backend.
func New[B Backend](backend B, opts ...Option) *Wallet[B] {
	o := options{rng: rand.Reader, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Wallet[B]{
		sem: semaphore.NewWeighted(1),
		state: &State[B]{
			backend: backend,
			rng:     o.rng,
			prover:  o.prover,
			log:     o.log.With().Str("component", "wallet").Logger(),
			keys:    make(map[aap.UserAddress]*aap.UserKeyPair),
			pending: make(map[ledger.TransactionHash]*pendingTxn),
		},
	}
}

// Guard is exclusive access to the wallet state. Release it on every path,
// normally with defer.
type Guard[B Backend] struct {
	*State[B]
	sem  *semaphore.Weighted
	once sync.Once
}

// Lock waits for exclusive access to the wallet state.
func (w *Wallet[B]) Lock(ctx context.Context) (*Guard[B], error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Guard[B]{State: w.state, sem: w.sem}, nil
}

// Release gives up the lock. Calling it more than once is a no-op.
func (g *Guard[B]) Release() {
	g.once.Do(func() { g.sem.Release(1) })
}

func (w *Wallet[B]) GenerateUserKey(ctx context.Context) (aap.UserPubKey, error) {
	g, err := w.Lock(ctx)
	if err != nil {
		return aap.UserPubKey{}, err
	}
	defer g.Release()
	return g.GenerateUserKey(ctx)
}

func (w *Wallet[B]) ImportRecord(ctx context.Context, ro aap.RecordOpening, uid uint64) error {
	g, err := w.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Release()
	return g.ImportRecord(ro, uid)
}

func (w *Wallet[B]) Balance(ctx context.Context, addr aap.UserAddress, code aap.AssetCode) (uint64, error) {
	g, err := w.Lock(ctx)
	if err != nil {
		return 0, err
	}
	defer g.Release()
	return g.Balance(addr, code), nil
}

func (w *Wallet[B]) Transfer(ctx context.Context, account aap.UserAddress, code aap.AssetCode,
	receivers []Receiver, fee uint64) (*TransactionReceipt, error) {

	g, err := w.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.Transfer(ctx, account, code, receivers, fee)
}

func (w *Wallet[B]) HandleBlock(ctx context.Context, block ledger.Block) error {
	g, err := w.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Release()
	g.HandleBlock(block)
	return nil
}

func (w *Wallet[B]) History(ctx context.Context) ([]TransactionHistoryEntry, error) {
	g, err := w.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.History(), nil
}

func (w *Wallet[B]) PendingWraps(ctx context.Context) ([]PendingWrap, error) {
	g, err := w.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.PendingWraps(), nil
}
