package domain

import "errors"

var (
	// ErrAccountNotFound is returned when a command targets an account that
	// has no event history yet
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyOpened is returned when OpenAccount hits an existing stream
	ErrAccountAlreadyOpened = errors.New("account already opened")

	// ErrReservationNotFound is returned when a commit addresses a reservation
	// key that does not exist. By protocol construction this should never
	// happen; it indicates commands issued out of order or a dropped add.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrTransactionNotFound is returned when a confirmation command targets a
	// saga that was never started, or a read targets an unknown transaction
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrVersionConflict is returned by an event store when the expected
	// stream version no longer matches; the sender reloads and retries
	ErrVersionConflict = errors.New("event stream version conflict")
)
