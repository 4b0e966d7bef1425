// Package bus is the in-process command/event runtime the aggregates run on.
// It delivers each command to its aggregate with same-id commands strictly
// serialized, persists raised events through a domain.EventStore with an
// optimistic version check, and publishes committed events to subscribers
// at-least-once, in per-aggregate commit order.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/key-value/banktransfer/internal/domain"
)

// conflictRetries bounds reload-and-retry on a stream version conflict.
// With in-process per-stream locking a conflict only happens when another
// process shares the store.
const conflictRetries = 3

// Factory builds an empty aggregate of one kind, ready to evolve from history
type Factory func(id uuid.UUID) domain.Aggregate

// Subscriber consumes published events. Handlers must be idempotent; delivery
// is at-least-once and a handler is never retried by the bus itself.
type Subscriber interface {
	HandleEvent(ctx context.Context, evt domain.Event)
}

// Bus routes commands to aggregates and fans committed events out to subscribers
type Bus struct {
	store domain.EventStore
	log   zerolog.Logger

	factories map[domain.AggregateKind]Factory

	mu      sync.Mutex
	streams map[string]*sync.Mutex

	subs     []*subscription
	inFlight sync.WaitGroup
	closed   bool
}

// New creates a bus on top of the given event store
func New(store domain.EventStore, log zerolog.Logger) *Bus {
	return &Bus{
		store:     store,
		log:       log.With().Str("component", "bus").Logger(),
		factories: make(map[domain.AggregateKind]Factory),
		streams:   make(map[string]*sync.Mutex),
	}
}

// Register binds an aggregate kind to its factory. Registration happens once
// at startup; the registry is treated as immutable afterwards.
func (b *Bus) Register(kind domain.AggregateKind, f Factory) {
	b.factories[kind] = f
}

// Subscribe attaches a named subscriber and starts its delivery loop.
// Each subscriber has its own FIFO queue, so one slow handler never blocks
// the others, and events reach every subscriber in publish order.
func (b *Bus) Subscribe(name string, sub Subscriber) {
	s := newSubscription(name, sub, &b.inFlight, b.log)
	b.subs = append(b.subs, s)
	go s.run()
}

// Send executes one command against its aggregate. It replays the aggregate's
// history, executes the command, appends the new events and publishes them.
// A nil error means the command was applied (or was a harmless duplicate) and
// its events, if any, are on their way to subscribers.
func (b *Bus) Send(ctx context.Context, cmd domain.Command) error {
	factory, ok := b.factories[cmd.AggregateKind()]
	if !ok {
		return fmt.Errorf("bus: no aggregate registered for kind %q", cmd.AggregateKind())
	}

	streamID := domain.StreamID(cmd.AggregateKind(), cmd.AggregateID())
	lock := b.streamLock(streamID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		history, version, err := b.store.Load(ctx, streamID)
		if err != nil {
			return fmt.Errorf("bus: load %s: %w", streamID, err)
		}

		agg := factory(cmd.AggregateID())
		for _, evt := range history {
			agg.Evolve(evt)
		}

		events, err := agg.Execute(cmd)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		if err := b.store.Append(ctx, streamID, version, events); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return fmt.Errorf("bus: append %s: %w", streamID, err)
		}

		b.publish(events)
		return nil
	}
	return fmt.Errorf("bus: send to %s: %w", streamID, lastErr)
}

// publish enqueues events for every subscriber. Called under the stream lock,
// which keeps per-aggregate publish order equal to commit order.
func (b *Bus) publish(events []domain.Event) {
	for _, s := range b.subs {
		for _, evt := range events {
			b.inFlight.Add(1)
			s.enqueue(evt)
		}
	}
}

// Drain blocks until every published event has been handled, including events
// published transitively by the handlers themselves
func (b *Bus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains outstanding deliveries and stops the subscriber loops
func (b *Bus) Close(ctx context.Context) error {
	if b.closed {
		return nil
	}
	b.closed = true
	err := b.Drain(ctx)
	for _, s := range b.subs {
		s.stop()
	}
	return err
}

func (b *Bus) streamLock(streamID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.streams[streamID]
	if !ok {
		lock = &sync.Mutex{}
		b.streams[streamID] = lock
	}
	return lock
}
