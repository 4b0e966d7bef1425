package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction saga.
// Transitions are monotonic; Completed and Canceled are terminal.
type TransactionStatus string

const (
	StatusStarted              TransactionStatus = "STARTED"
	StatusPreparationConfirmed TransactionStatus = "PREPARATION_CONFIRMED"
	StatusCompleted            TransactionStatus = "COMPLETED"
	StatusCancelStarted        TransactionStatus = "CANCEL_STARTED"
	StatusCanceled             TransactionStatus = "CANCELED"
)

// DepositTransaction is the single-party deposit saga. Money arriving cannot
// be refused, so there is no compensation path: Started goes straight to
// Completed once the credit reservation is confirmed and committed.
type DepositTransaction struct {
	ID                   uuid.UUID
	AccountID            uuid.UUID
	Amount               decimal.Decimal
	StartedAt            time.Time
	PreparationConfirmed bool
	Status               TransactionStatus
	started              bool
}

// NewDepositTransaction returns an empty deposit saga state
func NewDepositTransaction(id uuid.UUID) *DepositTransaction {
	return &DepositTransaction{ID: id}
}

// Execute validates a command against current state and returns the resulting events
func (d *DepositTransaction) Execute(cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case StartDeposit:
		if d.started {
			return nil, nil
		}
		return []Event{DepositStarted{
			TransactionID: c.TransactionID,
			AccountID:     c.AccountID,
			Amount:        c.Amount,
			StartedAt:     time.Now(),
		}}, nil
	case ConfirmDepositPreparation:
		if !d.started {
			return nil, ErrTransactionNotFound
		}
		if d.PreparationConfirmed || d.Status != StatusStarted {
			return nil, nil
		}
		return []Event{DepositPreparationConfirmed{TransactionID: d.ID, AccountID: d.AccountID}}, nil
	case ConfirmDeposit:
		if !d.started {
			return nil, ErrTransactionNotFound
		}
		if d.Status == StatusCompleted {
			return nil, nil
		}
		return []Event{DepositCompleted{TransactionID: d.ID}}, nil
	default:
		return nil, fmt.Errorf("deposit transaction %s: unexpected command %T", d.ID, cmd)
	}
}

// Evolve applies one event to the saga state
func (d *DepositTransaction) Evolve(evt Event) {
	switch e := evt.(type) {
	case DepositStarted:
		d.ID = e.TransactionID
		d.AccountID = e.AccountID
		d.Amount = e.Amount
		d.StartedAt = e.StartedAt
		d.Status = StatusStarted
		d.started = true
	case DepositPreparationConfirmed:
		d.PreparationConfirmed = true
	case DepositCompleted:
		d.Status = StatusCompleted
	}
}
