package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateKind identifies the aggregate type a command or stream belongs to
type AggregateKind string

const (
	KindAccount  AggregateKind = "account"
	KindDeposit  AggregateKind = "deposit"
	KindTransfer AggregateKind = "transfer"
)

// Command is the intent to change one aggregate's state.
// Commands are static variants; the bus routes them by kind and id.
type Command interface {
	AggregateID() uuid.UUID
	AggregateKind() AggregateKind
}

// --- Account commands ---

// OpenAccount creates a new bank account
type OpenAccount struct {
	AccountID uuid.UUID
	Owner     string
}

func (c OpenAccount) AggregateID() uuid.UUID { return c.AccountID }
func (c OpenAccount) AggregateKind() AggregateKind { return KindAccount }

// Deposit credits an account directly, outside any saga flow
type Deposit struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

func (c Deposit) AggregateID() uuid.UUID { return c.AccountID }
func (c Deposit) AggregateKind() AggregateKind { return KindAccount }

// Withdraw debits an account directly if the available balance allows it
type Withdraw struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

func (c Withdraw) AggregateID() uuid.UUID { return c.AccountID }
func (c Withdraw) AggregateKind() AggregateKind { return KindAccount }

// AddReservation places a two-phase hold on an account
type AddReservation struct {
	AccountID       uuid.UUID
	TransactionID   uuid.UUID
	TransactionKind TransactionKind
	Kind            ReservationKind
	Amount          decimal.Decimal
}

func (c AddReservation) AggregateID() uuid.UUID { return c.AccountID }
func (c AddReservation) AggregateKind() AggregateKind { return KindAccount }

// CommitReservation finalizes a previously added reservation, mutating the balance
type CommitReservation struct {
	AccountID       uuid.UUID
	TransactionID   uuid.UUID
	TransactionKind TransactionKind
	Kind            ReservationKind
}

func (c CommitReservation) AggregateID() uuid.UUID { return c.AccountID }
func (c CommitReservation) AggregateKind() AggregateKind { return KindAccount }

// CancelReservation releases a reservation without touching the balance
type CancelReservation struct {
	AccountID       uuid.UUID
	TransactionID   uuid.UUID
	TransactionKind TransactionKind
	Kind            ReservationKind
}

func (c CancelReservation) AggregateID() uuid.UUID { return c.AccountID }
func (c CancelReservation) AggregateKind() AggregateKind { return KindAccount }

// --- Deposit transaction commands ---

// StartDeposit begins a deposit transaction saga
type StartDeposit struct {
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        decimal.Decimal
}

func (c StartDeposit) AggregateID() uuid.UUID { return c.TransactionID }
func (c StartDeposit) AggregateKind() AggregateKind { return KindDeposit }

// ConfirmDepositPreparation records that the credit reservation was added
type ConfirmDepositPreparation struct {
	TransactionID uuid.UUID
}

func (c ConfirmDepositPreparation) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmDepositPreparation) AggregateKind() AggregateKind { return KindDeposit }

// ConfirmDeposit records that the credit reservation was committed
type ConfirmDeposit struct {
	TransactionID uuid.UUID
}

func (c ConfirmDeposit) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmDeposit) AggregateKind() AggregateKind { return KindDeposit }

// --- Transfer transaction commands ---

// StartTransfer begins a transfer transaction saga
type StartTransfer struct {
	Info TransferInfo
}

func (c StartTransfer) AggregateID() uuid.UUID { return c.Info.TransactionID }
func (c StartTransfer) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferOutPreparation records that the source debit reservation was added
type ConfirmTransferOutPreparation struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferOutPreparation) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferOutPreparation) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferInPreparation records that the target credit reservation was added
type ConfirmTransferInPreparation struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferInPreparation) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferInPreparation) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferOut records that the source debit reservation was committed
type ConfirmTransferOut struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferOut) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferOut) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferIn records that the target credit reservation was committed
type ConfirmTransferIn struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferIn) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferIn) AggregateKind() AggregateKind { return KindTransfer }

// StartTransferCancel begins the compensation path of a transfer
type StartTransferCancel struct {
	TransactionID uuid.UUID
}

func (c StartTransferCancel) AggregateID() uuid.UUID { return c.TransactionID }
func (c StartTransferCancel) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferOutCanceled records that the source debit reservation was released
type ConfirmTransferOutCanceled struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferOutCanceled) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferOutCanceled) AggregateKind() AggregateKind { return KindTransfer }

// ConfirmTransferInCanceled records that the target credit reservation was released
type ConfirmTransferInCanceled struct {
	TransactionID uuid.UUID
}

func (c ConfirmTransferInCanceled) AggregateID() uuid.UUID { return c.TransactionID }
func (c ConfirmTransferInCanceled) AggregateKind() AggregateKind { return KindTransfer }
