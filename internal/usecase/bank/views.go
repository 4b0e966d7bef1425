package bank

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/key-value/banktransfer/internal/domain"
)

// AccountView is the read model of one account
type AccountView struct {
	ID               uuid.UUID         `json:"id"`
	Owner            string            `json:"owner"`
	Balance          decimal.Decimal   `json:"balance"`
	AvailableBalance decimal.Decimal   `json:"available_balance"`
	Reservations     []ReservationView `json:"reservations"`
}

// ReservationView is the read model of one open reservation
type ReservationView struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	TransactionKind string          `json:"transaction_kind"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
}

// DepositView is the read model of one deposit transaction
type DepositView struct {
	TransactionID        uuid.UUID       `json:"transaction_id"`
	AccountID            uuid.UUID       `json:"account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	PreparationConfirmed bool            `json:"preparation_confirmed"`
}

// TransferView is the read model of one transfer transaction
type TransferView struct {
	TransactionID           uuid.UUID       `json:"transaction_id"`
	SourceAccountID         uuid.UUID       `json:"source_account_id"`
	TargetAccountID         uuid.UUID       `json:"target_account_id"`
	Amount                  decimal.Decimal `json:"amount"`
	Status                  string          `json:"status"`
	OutPreparationConfirmed bool            `json:"out_preparation_confirmed"`
	InPreparationConfirmed  bool            `json:"in_preparation_confirmed"`
	OutConfirmed            bool            `json:"out_confirmed"`
	InConfirmed             bool            `json:"in_confirmed"`
	CancelOutConfirmed      bool            `json:"cancel_out_confirmed"`
	CancelInConfirmed       bool            `json:"cancel_in_confirmed"`
}

func newAccountView(a *domain.Account) *AccountView {
	reservations := make([]ReservationView, 0)
	for _, r := range a.Reservations() {
		reservations = append(reservations, ReservationView{
			TransactionID:   r.TransactionID,
			TransactionKind: string(r.TransactionKind),
			Kind:            string(r.Kind),
			Amount:          r.Amount,
		})
	}
	return &AccountView{
		ID:               a.ID,
		Owner:            a.Owner,
		Balance:          a.Balance,
		AvailableBalance: a.AvailableBalance(),
		Reservations:     reservations,
	}
}

func newDepositView(d *domain.DepositTransaction) *DepositView {
	return &DepositView{
		TransactionID:        d.ID,
		AccountID:            d.AccountID,
		Amount:               d.Amount,
		Status:               string(d.Status),
		PreparationConfirmed: d.PreparationConfirmed,
	}
}

func newTransferView(t *domain.TransferTransaction) *TransferView {
	return &TransferView{
		TransactionID:           t.ID,
		SourceAccountID:         t.Info.SourceAccountID,
		TargetAccountID:         t.Info.TargetAccountID,
		Amount:                  t.Info.Amount,
		Status:                  string(t.Status),
		OutPreparationConfirmed: t.OutPreparationConfirmed,
		InPreparationConfirmed:  t.InPreparationConfirmed,
		OutConfirmed:            t.OutConfirmed,
		InConfirmed:             t.InConfirmed,
		CancelOutConfirmed:      t.CancelOutConfirmed,
		CancelInConfirmed:       t.CancelInConfirmed,
	}
}
