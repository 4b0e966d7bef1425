package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind identifies the business transaction a reservation belongs to
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "DEPOSIT"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// ReservationKind distinguishes outgoing (balance-checked) from incoming holds
type ReservationKind string

const (
	ReservationKindDebit  ReservationKind = "DEBIT"
	ReservationKindCredit ReservationKind = "CREDIT"
)

// ReservationKey uniquely identifies a reservation within one account
type ReservationKey struct {
	TransactionID   uuid.UUID
	TransactionKind TransactionKind
	Kind            ReservationKind
}

// Reservation is a pending hold against an account's balance, waiting for
// either commit (balance change) or cancel (release)
type Reservation struct {
	AccountID       uuid.UUID
	TransactionID   uuid.UUID
	TransactionKind TransactionKind
	Kind            ReservationKind
	Amount          decimal.Decimal
}

// Key returns the uniqueness key of the reservation
func (r Reservation) Key() ReservationKey {
	return ReservationKey{
		TransactionID:   r.TransactionID,
		TransactionKind: r.TransactionKind,
		Kind:            r.Kind,
	}
}
