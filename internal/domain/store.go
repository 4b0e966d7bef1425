package domain

import (
	"context"
	"fmt"
)

// EventStore persists and replays per-aggregate event streams.
// Append is atomic for the batch and must fail with ErrVersionConflict when
// expectedVersion no longer matches the stream head; that check is the only
// concurrency control the aggregates rely on.
type EventStore interface {
	// Load returns the ordered event history of a stream and its current version.
	// An unknown stream is not an error: it yields no events and version 0.
	Load(ctx context.Context, streamID string) ([]Event, int, error)

	// Append writes events at the end of a stream iff its version still equals
	// expectedVersion
	Append(ctx context.Context, streamID string, expectedVersion int, events []Event) error
}

// StreamID names the event stream of one aggregate instance
func StreamID(kind AggregateKind, id fmt.Stringer) string {
	return string(kind) + "/" + id.String()
}
