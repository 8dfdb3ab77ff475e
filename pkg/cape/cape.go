package cape

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourorg/capezk/internal/metrics"
	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/wallet"
)

// Wallet is a wallet with bridge operations. Every bridge operation holds
// the wallet lock for its whole duration.
type Wallet[B Backend] struct {
	*wallet.Wallet[B]
	log     zerolog.Logger
	metrics *metrics.Bridge
}

type config struct {
	log        zerolog.Logger
	metrics    *metrics.Bridge
	walletOpts []wallet.Option
}

type Option func(*config)

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
		c.walletOpts = append(c.walletOpts, wallet.WithLogger(l))
	}
}

func WithMetrics(m *metrics.Bridge) Option { return func(c *config) { c.metrics = m } }

func WithRand(r io.Reader) Option {
	return func(c *config) { c.walletOpts = append(c.walletOpts, wallet.WithRand(r)) }
}

func WithProver(p wallet.Prover) Option {
	return func(c *config) { c.walletOpts = append(c.walletOpts, wallet.WithProver(p)) }
}

func New[B Backend](backend B, opts ...Option) *Wallet[B] {
	c := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&c)
	}
	return &Wallet[B]{
		Wallet:  wallet.New(backend, c.walletOpts...),
		log:     c.log.With().Str("component", "cape").Logger(),
		metrics: c.metrics,
	}
}

// Sponsor derives a new shielded asset for code, sponsored by sponsor, and
// registers it with the backend.
func (w *Wallet[B]) Sponsor(ctx context.Context, code ledger.Erc20Code, sponsor ledger.EthereumAddr,
	policy aap.AssetPolicy) (def aap.AssetDefinition, err error) {

	defer w.observe("sponsor", time.Now(), &err)

	g, err := w.Lock(ctx)
	if err != nil {
		return aap.AssetDefinition{}, err
	}
	defer g.Release()

	desc := ledger.Erc20AssetDescription(code, sponsor)
	def, err = aap.NewAssetDefinition(aap.NewForeignAssetCode(desc), policy)
	if err != nil {
		return aap.AssetDefinition{}, fmt.Errorf("%w: %w", ErrCryptoConstruction, err)
	}
	if err := g.Backend().RegisterWrappedAsset(ctx, def, code, sponsor); err != nil {
		return aap.AssetDefinition{}, err
	}
	w.log.Info().
		Stringer("erc20", code).
		Stringer("sponsor", sponsor).
		Stringer("asset", def.Code).
		Msg("asset sponsored")
	return def, nil
}

// Wrap deposits amount of the token backing asset from src into a new
// record owned by owner. The token is debited at once; the record is
// spendable after the next block commits.
func (w *Wallet[B]) Wrap(ctx context.Context, src ledger.EthereumAddr, asset aap.AssetDefinition,
	owner aap.UserAddress, amount uint64) (err error) {

	defer w.observe("wrap", time.Now(), &err)

	g, err := w.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Release()

	backend := g.Backend()
	code, err := backend.GetWrappedErc20Code(ctx, asset)
	if err != nil {
		return err
	}
	pub, err := backend.GetPublicKey(ctx, owner)
	if err != nil {
		return err
	}
	ro, err := aap.NewRecordOpening(g.Rand(), amount, asset, pub, aap.Unfrozen)
	if err != nil {
		return err
	}
	if err := backend.WrapErc20(ctx, code, src, ro); err != nil {
		return err
	}
	g.RecordWrap(code, src, ro)
	w.metrics.AddVolume("wrap", amount)
	return nil
}

// ApprovedAssets lists every asset registered with the backend and the
// token backing it, in registration order.
func (w *Wallet[B]) ApprovedAssets(ctx context.Context) ([]WrappedAsset, error) {
	g, err := w.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.Backend().WrappedAssets(ctx)
}

// observe must be deferred directly so that it can see a panic.
func (w *Wallet[B]) observe(op string, start time.Time, err *error) {
	if r := recover(); r != nil {
		w.metrics.ObserveFault(op, time.Since(start))
		w.log.Error().Interface("fault", r).Str("op", op).Msg("bridge operation aborted")
		panic(r)
	}
	w.metrics.ObserveOp(op, time.Since(start), *err)
	if *err != nil {
		w.log.Debug().Err(*err).Str("op", op).Msg("bridge operation failed")
	}
}
