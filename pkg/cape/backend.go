// Package cape bridges ERC20 tokens and shielded assets: sponsoring a
// shielded asset for a token, wrapping tokens into records and burning
// records back into tokens.
package cape

import (
	"context"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
	"github.com/yourorg/capezk/pkg/wallet"
)

//go:generate mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks Backend

// Backend is the ledger side of the bridge: the wrapped-asset registry and
// the ERC20 deposit entry point, on top of the generic wallet backend.
type Backend interface {
	wallet.Backend

	// RegisterWrappedAsset binds asset to code. Fails with
	// ErrAssetAlreadyRegistered, without changes, if asset is bound.
	RegisterWrappedAsset(ctx context.Context, asset aap.AssetDefinition,
		code ledger.Erc20Code, sponsor ledger.EthereumAddr) error

	// GetWrappedErc20Code fails with ErrUnregisteredAsset.
	GetWrappedErc20Code(ctx context.Context, asset aap.AssetDefinition) (ledger.Erc20Code, error)

	// WrapErc20 debits ro.Amount of code from src and stages ro for the
	// next block.
	WrapErc20(ctx context.Context, code ledger.Erc20Code, src ledger.EthereumAddr, ro aap.RecordOpening) error

	// WrappedAssets lists the registry in registration order.
	WrappedAssets(ctx context.Context) ([]WrappedAsset, error)
}

// WrappedAsset is one registry entry.
type WrappedAsset struct {
	Definition aap.AssetDefinition `json:"definition"`
	Erc20Code  ledger.Erc20Code    `json:"erc20_code"`
	Sponsor    ledger.EthereumAddr `json:"sponsor"`
}
