// Package memory is an in-memory event store used by tests and the demo
// profile. Events are held as values, so replaying a stream is byte-exact.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/key-value/banktransfer/internal/domain"
)

// Store implements domain.EventStore over a map of streams
type Store struct {
	mu      sync.RWMutex
	streams map[string][]domain.Event
}

// NewStore creates an empty in-memory event store
func NewStore() *Store {
	return &Store{streams: make(map[string][]domain.Event)}
}

// Load returns a copy of a stream's history and its current version
func (s *Store) Load(_ context.Context, streamID string) ([]domain.Event, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.streams[streamID]
	out := make([]domain.Event, len(history))
	copy(out, history)
	return out, len(history), nil
}

// Append writes events at the end of a stream iff the version still matches
func (s *Store) Append(_ context.Context, streamID string, expectedVersion int, events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := len(s.streams[streamID])
	if current != expectedVersion {
		return fmt.Errorf("append %s at version %d, stream is at %d: %w",
			streamID, expectedVersion, current, domain.ErrVersionConflict)
	}
	s.streams[streamID] = append(s.streams[streamID], events...)
	return nil
}
