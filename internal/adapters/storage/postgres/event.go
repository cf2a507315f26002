package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/adapters/storage"
	eventstore "storefront/internal/adapters/storage/event"
	"storefront/internal/domain/event"
)

const eventColumns = `id, title, description, month, day, time, location, color, created_at`

// EventStore implements the event Store on PostgreSQL.
type EventStore struct {
	pool *pgxpool.Pool
}

var _ eventstore.Store = (*EventStore)(nil)

// NewEventStore creates an EventStore.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Month, &e.Day, &e.Time, &e.Location, &e.Color, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, storage.ErrNotFound
	}
	return e, err
}

// List returns every event ordered by id.
func (s *EventStore) List(ctx context.Context) ([]event.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+eventColumns+` FROM event ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns one event or storage.ErrNotFound.
func (s *EventStore) GetByID(ctx context.Context, id int64) (event.Event, error) {
	return scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM event WHERE id = $1`, id))
}

// Create inserts d and returns it with the assigned id.
func (s *EventStore) Create(ctx context.Context, d event.Draft, now time.Time) (event.Event, error) {
	return scanEvent(s.pool.QueryRow(ctx, `
		INSERT INTO event (title, description, month, day, time, location, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+eventColumns,
		d.Title, d.Description, d.Month, d.Day, d.Time, d.Location, d.Color, now.UTC()))
}

// Update replaces the mutable fields of event id.
func (s *EventStore) Update(ctx context.Context, id int64, d event.Draft) (event.Event, error) {
	return scanEvent(s.pool.QueryRow(ctx, `
		UPDATE event SET title = $2, description = $3, month = $4, day = $5, time = $6, location = $7, color = $8
		WHERE id = $1
		RETURNING `+eventColumns,
		id, d.Title, d.Description, d.Month, d.Day, d.Time, d.Location, d.Color))
}

// Delete removes event id.
func (s *EventStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of events.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event`).Scan(&n)
	return n, err
}
