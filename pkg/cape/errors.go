package cape

import (
	"errors"
	"fmt"

	"github.com/yourorg/capezk/pkg/wallet"
)

var (
	// ErrCryptoConstruction wraps failures to derive an asset definition.
	ErrCryptoConstruction     = errors.New("cannot construct asset definition")
	ErrAssetAlreadyRegistered = errors.New("asset definition already registered")
	ErrUnregisteredAsset      = errors.New("asset definition not registered")
	ErrUnknownOwner           = wallet.ErrUnknownOwner
)

// InternalFault is the panic value raised when the wallet engine hands back
// a transfer that breaks a bridge invariant. It indicates a bug, never a
// user error.
type InternalFault struct {
	Op     string
	Reason string
}

func (f InternalFault) Error() string {
	return fmt.Sprintf("cape %s: internal fault: %s", f.Op, f.Reason)
}
