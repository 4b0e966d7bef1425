package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/key-value/banktransfer/internal/domain"
)

// DepositProcessManager drives the deposit saga: place a credit hold on the
// account, commit it once the saga confirms preparation, then complete the
// saga. There is no compensation path; a credit cannot be refused.
type DepositProcessManager struct {
	sender CommandSender
	log    zerolog.Logger
}

// NewDepositProcessManager creates a new deposit process manager
func NewDepositProcessManager(sender CommandSender, log zerolog.Logger) *DepositProcessManager {
	return &DepositProcessManager{
		sender: sender,
		log:    log.With().Str("component", "deposit-pm").Logger(),
	}
}

// HandleEvent translates one published event into the next command
func (m *DepositProcessManager) HandleEvent(ctx context.Context, evt domain.Event) {
	switch e := evt.(type) {
	case domain.DepositStarted:
		m.send(ctx, domain.AddReservation{
			AccountID:       e.AccountID,
			TransactionID:   e.TransactionID,
			TransactionKind: domain.TransactionKindDeposit,
			Kind:            domain.ReservationKindCredit,
			Amount:          e.Amount,
		})

	case domain.ReservationAdded:
		if e.Reservation.TransactionKind != domain.TransactionKindDeposit ||
			e.Reservation.Kind != domain.ReservationKindCredit {
			return
		}
		m.send(ctx, domain.ConfirmDepositPreparation{TransactionID: e.Reservation.TransactionID})

	case domain.DepositPreparationConfirmed:
		m.send(ctx, domain.CommitReservation{
			AccountID:       e.AccountID,
			TransactionID:   e.TransactionID,
			TransactionKind: domain.TransactionKindDeposit,
			Kind:            domain.ReservationKindCredit,
		})

	case domain.ReservationCommitted:
		if e.Reservation.TransactionKind != domain.TransactionKindDeposit ||
			e.Reservation.Kind != domain.ReservationKindCredit {
			return
		}
		m.send(ctx, domain.ConfirmDeposit{TransactionID: e.Reservation.TransactionID})
	}
}

func (m *DepositProcessManager) send(ctx context.Context, cmd domain.Command) {
	if err := m.sender.Send(ctx, cmd); err != nil {
		m.log.Error().Err(err).Msgf("failed to send %T", cmd)
	}
}
