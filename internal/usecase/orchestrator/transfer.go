package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/key-value/banktransfer/internal/domain"
)

// TransferProcessManager drives the transfer saga: debit hold on the source,
// credit hold on the target, commit both once the saga confirms preparation,
// or cancel both when the source refuses the debit for insufficiency.
type TransferProcessManager struct {
	sender CommandSender
	log    zerolog.Logger
}

// NewTransferProcessManager creates a new transfer process manager
func NewTransferProcessManager(sender CommandSender, log zerolog.Logger) *TransferProcessManager {
	return &TransferProcessManager{
		sender: sender,
		log:    log.With().Str("component", "transfer-pm").Logger(),
	}
}

// HandleEvent translates one published event into the next command(s).
// Send failures are protocol faults; they are logged and left to the command
// dispatch layer's retry policy, never retried here.
func (m *TransferProcessManager) HandleEvent(ctx context.Context, evt domain.Event) {
	switch e := evt.(type) {
	case domain.TransferStarted:
		m.send(ctx, domain.AddReservation{
			AccountID:       e.Info.SourceAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindDebit,
			Amount:          e.Info.Amount,
		})
		m.send(ctx, domain.AddReservation{
			AccountID:       e.Info.TargetAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindCredit,
			Amount:          e.Info.Amount,
		})

	case domain.ReservationAdded:
		if e.Reservation.TransactionKind != domain.TransactionKindTransfer {
			return
		}
		switch e.Reservation.Kind {
		case domain.ReservationKindDebit:
			m.send(ctx, domain.ConfirmTransferOutPreparation{TransactionID: e.Reservation.TransactionID})
		case domain.ReservationKindCredit:
			m.send(ctx, domain.ConfirmTransferInPreparation{TransactionID: e.Reservation.TransactionID})
		}

	case domain.InsufficientBalance:
		if e.TransactionKind != domain.TransactionKindTransfer {
			return
		}
		m.send(ctx, domain.StartTransferCancel{TransactionID: e.TransactionID})

	case domain.TransferPreparationConfirmed:
		m.send(ctx, domain.CommitReservation{
			AccountID:       e.Info.SourceAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindDebit,
		})
		m.send(ctx, domain.CommitReservation{
			AccountID:       e.Info.TargetAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindCredit,
		})

	case domain.ReservationCommitted:
		if e.Reservation.TransactionKind != domain.TransactionKindTransfer {
			return
		}
		switch e.Reservation.Kind {
		case domain.ReservationKindDebit:
			m.send(ctx, domain.ConfirmTransferOut{TransactionID: e.Reservation.TransactionID})
		case domain.ReservationKindCredit:
			m.send(ctx, domain.ConfirmTransferIn{TransactionID: e.Reservation.TransactionID})
		}

	case domain.TransferCancelStarted:
		m.send(ctx, domain.CancelReservation{
			AccountID:       e.Info.SourceAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindDebit,
		})
		m.send(ctx, domain.CancelReservation{
			AccountID:       e.Info.TargetAccountID,
			TransactionID:   e.Info.TransactionID,
			TransactionKind: domain.TransactionKindTransfer,
			Kind:            domain.ReservationKindCredit,
		})

	case domain.ReservationCanceled:
		if e.TransactionKind != domain.TransactionKindTransfer {
			return
		}
		switch e.Kind {
		case domain.ReservationKindDebit:
			m.send(ctx, domain.ConfirmTransferOutCanceled{TransactionID: e.TransactionID})
		case domain.ReservationKindCredit:
			m.send(ctx, domain.ConfirmTransferInCanceled{TransactionID: e.TransactionID})
		}
	}
}

func (m *TransferProcessManager) send(ctx context.Context, cmd domain.Command) {
	if err := m.sender.Send(ctx, cmd); err != nil {
		m.log.Error().Err(err).Msgf("failed to send %T", cmd)
	}
}
