package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the bank account aggregate root. It owns a balance and the set
// of in-flight reservations, and is mutated only by replaying its own events.
// Cross-account consistency is never handled here; that is the sagas' job.
type Account struct {
	ID           uuid.UUID
	Owner        string
	Balance      decimal.Decimal
	reservations map[ReservationKey]Reservation
	opened       bool
}

// NewAccount returns an empty account state ready to evolve from history
func NewAccount(id uuid.UUID) *Account {
	return &Account{
		ID:           id,
		reservations: make(map[ReservationKey]Reservation),
	}
}

// Opened reports whether the account has been created
func (a *Account) Opened() bool {
	return a.opened
}

// AvailableBalance is the balance minus the sum of open debit reservations.
// Credit reservations never reduce what the owner can spend.
func (a *Account) AvailableBalance() decimal.Decimal {
	available := a.Balance
	for _, r := range a.reservations {
		if r.Kind == ReservationKindDebit {
			available = available.Sub(r.Amount)
		}
	}
	return available
}

// Reservations returns a copy of the open reservations
func (a *Account) Reservations() []Reservation {
	out := make([]Reservation, 0, len(a.reservations))
	for _, r := range a.reservations {
		out = append(out, r)
	}
	return out
}

// Execute validates a command against current state and returns the resulting
// events. State is not mutated here; the caller applies the events via Evolve
// after they are durably appended.
func (a *Account) Execute(cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case OpenAccount:
		return a.open(c)
	case Deposit:
		return a.deposit(c)
	case Withdraw:
		return a.withdraw(c)
	case AddReservation:
		return a.addReservation(c)
	case CommitReservation:
		return a.commitReservation(c)
	case CancelReservation:
		return a.cancelReservation(c)
	default:
		return nil, fmt.Errorf("account %s: unexpected command %T", a.ID, cmd)
	}
}

func (a *Account) open(c OpenAccount) ([]Event, error) {
	if a.opened {
		return nil, ErrAccountAlreadyOpened
	}
	return []Event{AccountOpened{AccountID: c.AccountID, Owner: c.Owner}}, nil
}

func (a *Account) deposit(c Deposit) ([]Event, error) {
	if !a.opened {
		return nil, ErrAccountNotFound
	}
	return []Event{AccountCredited{
		AccountID:  a.ID,
		Amount:     c.Amount,
		NewBalance: a.Balance.Add(c.Amount),
	}}, nil
}

func (a *Account) withdraw(c Withdraw) ([]Event, error) {
	if !a.opened {
		return nil, ErrAccountNotFound
	}
	available := a.AvailableBalance()
	if available.LessThan(c.Amount) {
		return []Event{InsufficientBalance{
			AccountID:        a.ID,
			Amount:           c.Amount,
			Balance:          a.Balance,
			AvailableBalance: available,
		}}, nil
	}
	return []Event{AccountDebited{
		AccountID:  a.ID,
		Amount:     c.Amount,
		NewBalance: a.Balance.Sub(c.Amount),
	}}, nil
}

func (a *Account) addReservation(c AddReservation) ([]Event, error) {
	if !a.opened {
		return nil, ErrAccountNotFound
	}
	key := ReservationKey{
		TransactionID:   c.TransactionID,
		TransactionKind: c.TransactionKind,
		Kind:            c.Kind,
	}
	// Redelivered add: the reservation already exists, nothing to do.
	if _, ok := a.reservations[key]; ok {
		return nil, nil
	}
	available := a.AvailableBalance()
	if c.Kind == ReservationKindDebit && available.LessThan(c.Amount) {
		return []Event{InsufficientBalance{
			AccountID:        a.ID,
			TransactionID:    c.TransactionID,
			TransactionKind:  c.TransactionKind,
			Amount:           c.Amount,
			Balance:          a.Balance,
			AvailableBalance: available,
		}}, nil
	}
	return []Event{ReservationAdded{Reservation: Reservation{
		AccountID:       a.ID,
		TransactionID:   c.TransactionID,
		TransactionKind: c.TransactionKind,
		Kind:            c.Kind,
		Amount:          c.Amount,
	}}}, nil
}

func (a *Account) commitReservation(c CommitReservation) ([]Event, error) {
	if !a.opened {
		return nil, ErrAccountNotFound
	}
	key := ReservationKey{
		TransactionID:   c.TransactionID,
		TransactionKind: c.TransactionKind,
		Kind:            c.Kind,
	}
	r, ok := a.reservations[key]
	if !ok {
		// Commit must always follow a successful add; a missing key means the
		// protocol was violated, not that we raced another command.
		return nil, fmt.Errorf("account %s: commit %s/%s for transaction %s: %w",
			a.ID, c.TransactionKind, c.Kind, c.TransactionID, ErrReservationNotFound)
	}
	newBalance := a.Balance
	switch r.Kind {
	case ReservationKindDebit:
		newBalance = newBalance.Sub(r.Amount)
	case ReservationKindCredit:
		newBalance = newBalance.Add(r.Amount)
	}
	return []Event{ReservationCommitted{Reservation: r, NewBalance: newBalance}}, nil
}

func (a *Account) cancelReservation(c CancelReservation) ([]Event, error) {
	if !a.opened {
		return nil, ErrAccountNotFound
	}
	key := ReservationKey{
		TransactionID:   c.TransactionID,
		TransactionKind: c.TransactionKind,
		Kind:            c.Kind,
	}
	// Cancel is idempotent: a compensation flow may cancel a reservation that
	// was refused for insufficiency and therefore never added. The event is
	// raised either way so the saga's cancel confirmations converge.
	amount := decimal.Zero
	if r, ok := a.reservations[key]; ok {
		amount = r.Amount
	}
	return []Event{ReservationCanceled{
		AccountID:       a.ID,
		TransactionID:   c.TransactionID,
		TransactionKind: c.TransactionKind,
		Kind:            c.Kind,
		Amount:          amount,
	}}, nil
}

// Evolve applies one event to the account state
func (a *Account) Evolve(evt Event) {
	switch e := evt.(type) {
	case AccountOpened:
		a.ID = e.AccountID
		a.Owner = e.Owner
		a.Balance = decimal.Zero
		a.opened = true
	case AccountCredited:
		a.Balance = e.NewBalance
	case AccountDebited:
		a.Balance = e.NewBalance
	case InsufficientBalance:
		// Signal only; no state change.
	case ReservationAdded:
		a.reservations[e.Reservation.Key()] = e.Reservation
	case ReservationCommitted:
		delete(a.reservations, e.Reservation.Key())
		a.Balance = e.NewBalance
	case ReservationCanceled:
		delete(a.reservations, ReservationKey{
			TransactionID:   e.TransactionID,
			TransactionKind: e.TransactionKind,
			Kind:            e.Kind,
		})
	}
}
