package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferInfo is the immutable description of one transfer
type TransferInfo struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	SourceAccountID uuid.UUID       `json:"source_account_id"`
	TargetAccountID uuid.UUID       `json:"target_account_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// TransferTransaction is the two-party transfer saga. Each side of the
// protocol is tracked by its own confirmation flag; the status only advances
// once both flags of the current phase are set, so the two account flows may
// interleave in any order. Flags are never reset.
//
// Started -> PreparationConfirmed -> Completed
// Started -> CancelStarted -> Canceled
type TransferTransaction struct {
	ID        uuid.UUID
	Info      TransferInfo
	StartedAt time.Time
	Status    TransactionStatus

	OutPreparationConfirmed bool
	InPreparationConfirmed  bool
	OutConfirmed            bool
	InConfirmed             bool
	CancelOutConfirmed      bool
	CancelInConfirmed       bool

	started bool
}

// NewTransferTransaction returns an empty transfer saga state
func NewTransferTransaction(id uuid.UUID) *TransferTransaction {
	return &TransferTransaction{ID: id}
}

// Execute validates a command against current state and returns the resulting
// events. Commands that arrive in the wrong phase, after a terminal status, or
// as duplicates are ignored rather than rejected: the process manager runs on
// at-least-once delivery and replays are expected.
func (t *TransferTransaction) Execute(cmd Command) ([]Event, error) {
	switch cmd.(type) {
	case StartTransfer:
	default:
		if !t.started {
			return nil, ErrTransactionNotFound
		}
	}

	switch c := cmd.(type) {
	case StartTransfer:
		if t.started {
			return nil, nil
		}
		if err := validateTransferInfo(c.Info); err != nil {
			return nil, err
		}
		return []Event{TransferStarted{Info: c.Info, StartedAt: time.Now()}}, nil

	case ConfirmTransferOutPreparation:
		if t.Status != StatusStarted || t.OutPreparationConfirmed {
			return nil, nil
		}
		events := []Event{TransferOutPreparationConfirmed{Info: t.Info}}
		if t.InPreparationConfirmed {
			events = append(events, TransferPreparationConfirmed{Info: t.Info})
		}
		return events, nil

	case ConfirmTransferInPreparation:
		if t.Status != StatusStarted || t.InPreparationConfirmed {
			return nil, nil
		}
		events := []Event{TransferInPreparationConfirmed{Info: t.Info}}
		if t.OutPreparationConfirmed {
			events = append(events, TransferPreparationConfirmed{Info: t.Info})
		}
		return events, nil

	case ConfirmTransferOut:
		if t.Status != StatusPreparationConfirmed || t.OutConfirmed {
			return nil, nil
		}
		events := []Event{TransferOutConfirmed{Info: t.Info}}
		if t.InConfirmed {
			events = append(events, TransferCompleted{Info: t.Info})
		}
		return events, nil

	case ConfirmTransferIn:
		if t.Status != StatusPreparationConfirmed || t.InConfirmed {
			return nil, nil
		}
		events := []Event{TransferInConfirmed{Info: t.Info}}
		if t.OutConfirmed {
			events = append(events, TransferCompleted{Info: t.Info})
		}
		return events, nil

	case StartTransferCancel:
		// Only an uncommitted transfer can be canceled. Once both
		// preparations are confirmed the intent is to complete, not abort.
		if t.Status != StatusStarted {
			return nil, nil
		}
		return []Event{TransferCancelStarted{Info: t.Info}}, nil

	case ConfirmTransferOutCanceled:
		if t.Status != StatusCancelStarted || t.CancelOutConfirmed {
			return nil, nil
		}
		events := []Event{TransferOutCancelConfirmed{Info: t.Info}}
		if t.CancelInConfirmed {
			events = append(events, TransferCanceled{Info: t.Info})
		}
		return events, nil

	case ConfirmTransferInCanceled:
		if t.Status != StatusCancelStarted || t.CancelInConfirmed {
			return nil, nil
		}
		events := []Event{TransferInCancelConfirmed{Info: t.Info}}
		if t.CancelOutConfirmed {
			events = append(events, TransferCanceled{Info: t.Info})
		}
		return events, nil

	default:
		return nil, fmt.Errorf("transfer transaction %s: unexpected command %T", t.ID, cmd)
	}
}

func validateTransferInfo(info TransferInfo) error {
	if info.SourceAccountID == info.TargetAccountID {
		return fmt.Errorf("transfer %s: source and target account must differ", info.TransactionID)
	}
	if info.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transfer %s: amount must be positive", info.TransactionID)
	}
	return nil
}

// Evolve applies one event to the saga state
func (t *TransferTransaction) Evolve(evt Event) {
	switch e := evt.(type) {
	case TransferStarted:
		t.ID = e.Info.TransactionID
		t.Info = e.Info
		t.StartedAt = e.StartedAt
		t.Status = StatusStarted
		t.started = true
	case TransferOutPreparationConfirmed:
		t.OutPreparationConfirmed = true
	case TransferInPreparationConfirmed:
		t.InPreparationConfirmed = true
	case TransferPreparationConfirmed:
		t.Status = StatusPreparationConfirmed
	case TransferOutConfirmed:
		t.OutConfirmed = true
	case TransferInConfirmed:
		t.InConfirmed = true
	case TransferCompleted:
		t.Status = StatusCompleted
	case TransferCancelStarted:
		t.Status = StatusCancelStarted
	case TransferOutCancelConfirmed:
		t.CancelOutConfirmed = true
	case TransferInCancelConfirmed:
		t.CancelInConfirmed = true
	case TransferCanceled:
		t.Status = StatusCanceled
	}
}
