package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/key-value/banktransfer/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach
const uniqueViolation = "23505"

// eventStore implements domain.EventStore over a PostgreSQL events table.
// The unique (stream_id, version) constraint is the optimistic-concurrency
// check: a concurrent writer loses the insert race and sees a version conflict.
type eventStore struct {
	db *DB
}

// NewEventStore creates a new PostgreSQL-backed event store
func NewEventStore(db *DB) domain.EventStore {
	return &eventStore{db: db}
}

// EnsureSchema creates the events table if it does not exist
func EnsureSchema(ctx context.Context, db *DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			stream_id   TEXT        NOT NULL,
			version     INTEGER     NOT NULL,
			event_type  TEXT        NOT NULL,
			payload     JSONB       NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (stream_id, version)
		)
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}

// Load returns the ordered event history of a stream and its current version
func (s *eventStore) Load(ctx context.Context, streamID string) ([]domain.Event, int, error) {
	query := `
		SELECT event_type, payload
		FROM events
		WHERE stream_id = $1
		ORDER BY version
	`

	rows, err := s.db.QueryContext(ctx, query, streamID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load stream %s: %w", streamID, err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, 0, fmt.Errorf("failed to scan event row: %w", err)
		}
		evt, err := unmarshalEvent(eventType, payload)
		if err != nil {
			return nil, 0, fmt.Errorf("stream %s: %w", streamID, err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate stream %s: %w", streamID, err)
	}

	return events, len(events), nil
}

// Append writes events at the end of a stream iff the version still matches
func (s *eventStore) Append(ctx context.Context, streamID string, expectedVersion int, events []domain.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (stream_id, version, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`

	for i, evt := range events {
		eventType, payload, err := marshalEvent(evt)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, streamID, expectedVersion+i+1, eventType, payload); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return fmt.Errorf("append %s at version %d: %w", streamID, expectedVersion, domain.ErrVersionConflict)
			}
			return fmt.Errorf("failed to insert event %s: %w", eventType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append transaction: %w", err)
	}
	return nil
}
