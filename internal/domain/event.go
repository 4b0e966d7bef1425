package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a fact raised by an aggregate and appended to its stream.
// EventType is the stable name used for persistence and logging; dispatch is
// a static switch over the concrete variants, never a runtime type registry.
type Event interface {
	EventType() string
}

// Aggregate is an event-sourced aggregate root. Execute validates a command
// against current state and returns the resulting events without mutating
// state; Evolve applies one event to state and must never fail.
type Aggregate interface {
	Execute(cmd Command) ([]Event, error)
	Evolve(evt Event)
}

// --- Account events ---

// AccountOpened is raised when a new account is created
type AccountOpened struct {
	AccountID uuid.UUID `json:"account_id"`
	Owner     string    `json:"owner"`
}

func (AccountOpened) EventType() string { return "account.opened" }

// AccountCredited is raised by a direct deposit
type AccountCredited struct {
	AccountID  uuid.UUID       `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (AccountCredited) EventType() string { return "account.credited" }

// AccountDebited is raised by a direct withdrawal
type AccountDebited struct {
	AccountID  uuid.UUID       `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

func (AccountDebited) EventType() string { return "account.debited" }

// InsufficientBalance signals that a debit reservation or withdrawal was
// refused. A business outcome, not an error: the process manager reacts to it
// by starting compensation. TransactionID is nil for direct withdrawals.
type InsufficientBalance struct {
	AccountID        uuid.UUID       `json:"account_id"`
	TransactionID    uuid.UUID       `json:"transaction_id"`
	TransactionKind  TransactionKind `json:"transaction_kind"`
	Amount           decimal.Decimal `json:"amount"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

func (InsufficientBalance) EventType() string { return "account.insufficient_balance" }

// ReservationAdded is raised when a two-phase hold is placed on an account
type ReservationAdded struct {
	Reservation Reservation `json:"reservation"`
}

func (ReservationAdded) EventType() string { return "account.reservation_added" }

// ReservationCommitted is raised when a hold is finalized and the balance mutated
type ReservationCommitted struct {
	Reservation Reservation     `json:"reservation"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

func (ReservationCommitted) EventType() string { return "account.reservation_committed" }

// ReservationCanceled is raised when a hold is released without a balance
// change. Canceling is idempotent: the event is raised even when no matching
// reservation exists, so a compensation flow always converges.
type ReservationCanceled struct {
	AccountID       uuid.UUID       `json:"account_id"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	TransactionKind TransactionKind `json:"transaction_kind"`
	Kind            ReservationKind `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
}

func (ReservationCanceled) EventType() string { return "account.reservation_canceled" }

// --- Deposit transaction events ---

// DepositStarted is raised when a deposit transaction saga is created
type DepositStarted struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	StartedAt     time.Time       `json:"started_at"`
}

func (DepositStarted) EventType() string { return "deposit.started" }

// DepositPreparationConfirmed is raised once the credit reservation is in place
type DepositPreparationConfirmed struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
}

func (DepositPreparationConfirmed) EventType() string { return "deposit.preparation_confirmed" }

// DepositCompleted is the terminal event of a deposit transaction
type DepositCompleted struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

func (DepositCompleted) EventType() string { return "deposit.completed" }

// --- Transfer transaction events ---

// TransferStarted is raised when a transfer transaction saga is created
type TransferStarted struct {
	Info      TransferInfo `json:"info"`
	StartedAt time.Time    `json:"started_at"`
}

func (TransferStarted) EventType() string { return "transfer.started" }

// TransferOutPreparationConfirmed records the source-side hold
type TransferOutPreparationConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferOutPreparationConfirmed) EventType() string {
	return "transfer.out_preparation_confirmed"
}

// TransferInPreparationConfirmed records the target-side hold
type TransferInPreparationConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferInPreparationConfirmed) EventType() string {
	return "transfer.in_preparation_confirmed"
}

// TransferPreparationConfirmed is raised once both holds are in place
type TransferPreparationConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferPreparationConfirmed) EventType() string { return "transfer.preparation_confirmed" }

// TransferOutConfirmed records the committed source-side hold
type TransferOutConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferOutConfirmed) EventType() string { return "transfer.out_confirmed" }

// TransferInConfirmed records the committed target-side hold
type TransferInConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferInConfirmed) EventType() string { return "transfer.in_confirmed" }

// TransferCompleted is the successful terminal event of a transfer
type TransferCompleted struct {
	Info TransferInfo `json:"info"`
}

func (TransferCompleted) EventType() string { return "transfer.completed" }

// TransferCancelStarted is raised when compensation begins
type TransferCancelStarted struct {
	Info TransferInfo `json:"info"`
}

func (TransferCancelStarted) EventType() string { return "transfer.cancel_started" }

// TransferOutCancelConfirmed records the released source-side hold
type TransferOutCancelConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferOutCancelConfirmed) EventType() string { return "transfer.out_cancel_confirmed" }

// TransferInCancelConfirmed records the released target-side hold
type TransferInCancelConfirmed struct {
	Info TransferInfo `json:"info"`
}

func (TransferInCancelConfirmed) EventType() string { return "transfer.in_cancel_confirmed" }

// TransferCanceled is the compensated terminal event of a transfer
type TransferCanceled struct {
	Info TransferInfo `json:"info"`
}

func (TransferCanceled) EventType() string { return "transfer.canceled" }
