package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/key-value/banktransfer/internal/domain"
)

// marshalEvent serializes an event to its stable type name and JSON payload
func marshalEvent(evt domain.Event) (string, []byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
	}
	return evt.EventType(), payload, nil
}

// unmarshalEvent rebuilds a concrete event from its stored type name.
// The mapping is a static switch over the known variants; an unknown name
// means the stored data is newer or older than this binary and is an error.
func unmarshalEvent(eventType string, payload []byte) (domain.Event, error) {
	var evt domain.Event
	switch eventType {
	case domain.AccountOpened{}.EventType():
		evt = &domain.AccountOpened{}
	case domain.AccountCredited{}.EventType():
		evt = &domain.AccountCredited{}
	case domain.AccountDebited{}.EventType():
		evt = &domain.AccountDebited{}
	case domain.InsufficientBalance{}.EventType():
		evt = &domain.InsufficientBalance{}
	case domain.ReservationAdded{}.EventType():
		evt = &domain.ReservationAdded{}
	case domain.ReservationCommitted{}.EventType():
		evt = &domain.ReservationCommitted{}
	case domain.ReservationCanceled{}.EventType():
		evt = &domain.ReservationCanceled{}
	case domain.DepositStarted{}.EventType():
		evt = &domain.DepositStarted{}
	case domain.DepositPreparationConfirmed{}.EventType():
		evt = &domain.DepositPreparationConfirmed{}
	case domain.DepositCompleted{}.EventType():
		evt = &domain.DepositCompleted{}
	case domain.TransferStarted{}.EventType():
		evt = &domain.TransferStarted{}
	case domain.TransferOutPreparationConfirmed{}.EventType():
		evt = &domain.TransferOutPreparationConfirmed{}
	case domain.TransferInPreparationConfirmed{}.EventType():
		evt = &domain.TransferInPreparationConfirmed{}
	case domain.TransferPreparationConfirmed{}.EventType():
		evt = &domain.TransferPreparationConfirmed{}
	case domain.TransferOutConfirmed{}.EventType():
		evt = &domain.TransferOutConfirmed{}
	case domain.TransferInConfirmed{}.EventType():
		evt = &domain.TransferInConfirmed{}
	case domain.TransferCompleted{}.EventType():
		evt = &domain.TransferCompleted{}
	case domain.TransferCancelStarted{}.EventType():
		evt = &domain.TransferCancelStarted{}
	case domain.TransferOutCancelConfirmed{}.EventType():
		evt = &domain.TransferOutCancelConfirmed{}
	case domain.TransferInCancelConfirmed{}.EventType():
		evt = &domain.TransferInCancelConfirmed{}
	case domain.TransferCanceled{}.EventType():
		evt = &domain.TransferCanceled{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if err := json.Unmarshal(payload, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}
	return deref(evt), nil
}

// deref returns the value variant so evolve switches match the same concrete
// types the memory store yields
func deref(evt domain.Event) domain.Event {
	switch e := evt.(type) {
	case *domain.AccountOpened:
		return *e
	case *domain.AccountCredited:
		return *e
	case *domain.AccountDebited:
		return *e
	case *domain.InsufficientBalance:
		return *e
	case *domain.ReservationAdded:
		return *e
	case *domain.ReservationCommitted:
		return *e
	case *domain.ReservationCanceled:
		return *e
	case *domain.DepositStarted:
		return *e
	case *domain.DepositPreparationConfirmed:
		return *e
	case *domain.DepositCompleted:
		return *e
	case *domain.TransferStarted:
		return *e
	case *domain.TransferOutPreparationConfirmed:
		return *e
	case *domain.TransferInPreparationConfirmed:
		return *e
	case *domain.TransferPreparationConfirmed:
		return *e
	case *domain.TransferOutConfirmed:
		return *e
	case *domain.TransferInConfirmed:
		return *e
	case *domain.TransferCompleted:
		return *e
	case *domain.TransferCancelStarted:
		return *e
	case *domain.TransferOutCancelConfirmed:
		return *e
	case *domain.TransferInCancelConfirmed:
		return *e
	case *domain.TransferCanceled:
		return *e
	default:
		return evt
	}
}
