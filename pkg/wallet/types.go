package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/capezk/pkg/aap"
	"github.com/yourorg/capezk/pkg/ledger"
)

// Receiver is one payee of a transfer.
type Receiver struct {
	Address aap.UserAddress `json:"address"`
	Amount  uint64          `json:"amount"`
}

// TransferShape pins the number of inputs and outputs of a note.
type TransferShape struct {
	Inputs  int
	Outputs int
}

// TransferInfo is a built but not yet submitted transfer.
type TransferInfo struct {
	Note         *aap.TransferNote
	SigKey       *aap.SigningKey
	OwnerAddress aap.UserAddress
	// FeeOutput is the change of the fee input, always the last output.
	FeeOutput *aap.RecordOpening
	Inputs    []aap.RecordOpening
	Outputs   []aap.RecordOpening
	History   TransactionHistoryEntry
}

// TransactionInfo accompanies a transition on submission.
type TransactionInfo struct {
	Account aap.UserAddress
	Memos   []aap.ReceiverMemo
	Sig     aap.Signature
	History *TransactionHistoryEntry
	UID     *ledger.TransactionHash
	Inputs  []aap.RecordOpening
	Outputs []aap.RecordOpening
}

// TransactionReceipt identifies a submitted transaction.
type TransactionReceipt struct {
	UID          ledger.TransactionHash `json:"uid"`
	FeeNullifier aap.Nullifier          `json:"fee_nullifier"`
	Submitter    aap.UserAddress        `json:"submitter"`
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCommitted TransactionStatus = "committed"
	StatusRejected  TransactionStatus = "rejected"
)

type TransactionHistoryEntry struct {
	Time      time.Time              `json:"time"`
	Asset     aap.AssetCode          `json:"asset"`
	Kind      ledger.TransactionKind `json:"kind"`
	Sender    *aap.UserAddress       `json:"sender,omitempty"`
	Receivers []Receiver             `json:"receivers"`
	Receipt   *TransactionReceipt    `json:"receipt,omitempty"`
	Status    TransactionStatus      `json:"status"`
}

type WrapStatus string

const (
	WrapSubmitted WrapStatus = "submitted"
	WrapConfirmed WrapStatus = "confirmed"
)

// PendingWrap tracks a deposit from the moment the ERC20 side was debited
// until the shielded record is in a committed block.
type PendingWrap struct {
	ID        uuid.UUID           `json:"id"`
	Erc20Code ledger.Erc20Code    `json:"erc20_code"`
	Src       ledger.EthereumAddr `json:"src"`
	Opening   aap.RecordOpening   `json:"ro"`
	Status    WrapStatus          `json:"status"`
	UID       uint64              `json:"uid,omitempty"`
	Submitted time.Time           `json:"submitted"`
}
