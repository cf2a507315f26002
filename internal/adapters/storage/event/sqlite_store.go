package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/adapters/storage"
	domain "storefront/internal/domain/event"
)

const timeLayout = time.RFC3339Nano

const selectColumns = `SELECT id, title, description, month, day, time, location, color, created_at FROM event`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every event ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns the event with id, or storage.ErrNotFound.
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("get event %d: %w", id, err)
	}
	return e, nil
}

// Create inserts d and returns the stored event with its assigned id.
func (s *SQLiteStore) Create(ctx context.Context, d domain.Draft, now time.Time) (domain.Event, error) {
	now = now.UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO event (title, description, month, day, time, location, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Title, d.Description, d.Month, d.Day, d.Time, d.Location, d.Color, now.Format(timeLayout))
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert event: last id: %w", err)
	}
	return domain.Event{ID: id, CreatedAt: now}.WithDraft(d), nil
}

// Update replaces the mutable columns of event id.
func (s *SQLiteStore) Update(ctx context.Context, id int64, d domain.Draft) (domain.Event, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE event SET title = ?, description = ?, month = ?, day = ?, time = ?, location = ?, color = ?
		 WHERE id = ?`,
		d.Title, d.Description, d.Month, d.Day, d.Time, d.Location, d.Color, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("update event %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Event{}, storage.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes event id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM event WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (domain.Event, error) {
	var e domain.Event
	var createdAt string
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Month, &e.Day, &e.Time, &e.Location, &e.Color, &createdAt); err != nil {
		return domain.Event{}, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	e.CreatedAt = t
	return e, nil
}
