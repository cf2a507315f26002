package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/adapters/storage"
	outboxstore "storefront/internal/adapters/storage/outbox"
	"storefront/internal/domain/outbox"
)

const outboxColumns = `id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message`

// OutboxStore implements the outbox Store on PostgreSQL.
type OutboxStore struct {
	pool *pgxpool.Pool
}

var _ outboxstore.Store = (*OutboxStore)(nil)

// NewOutboxStore creates an OutboxStore.
func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

func scanOutbox(row pgx.Row) (outbox.Entry, error) {
	var e outbox.Entry
	var last *time.Time
	err := row.Scan(&e.ID, &e.ActionType, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&last, &e.CreatedAt, &e.ExternalID, &e.ErrorMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return outbox.Entry{}, storage.ErrNotFound
	}
	if err != nil {
		return outbox.Entry{}, err
	}
	if last != nil {
		e.LastAttemptedAt = *last
	}
	return e, nil
}

func collectOutbox(rows pgx.Rows) ([]outbox.Entry, error) {
	defer rows.Close()
	var out []outbox.Entry
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID retrieves an entry.
func (s *OutboxStore) GetByID(ctx context.Context, id string) (outbox.Entry, error) {
	return scanOutbox(s.pool.QueryRow(ctx, `SELECT `+outboxColumns+` FROM outbox WHERE id = $1`, id))
}

// Save upserts e.
func (s *OutboxStore) Save(ctx context.Context, e outbox.Entry) error {
	var last *time.Time
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt.UTC()
		last = &t
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO outbox (`+outboxColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status, attempts = EXCLUDED.attempts, max_attempts = EXCLUDED.max_attempts,
			last_attempted_at = EXCLUDED.last_attempted_at, external_id = EXCLUDED.external_id,
			error_message = EXCLUDED.error_message`,
		e.ID, e.ActionType, e.Payload, e.Status, e.Attempts, e.MaxAttempts, last, e.CreatedAt.UTC(), e.ExternalID, e.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save outbox entry %s: %w", e.ID, err)
	}
	return nil
}

// ListPending returns pending or retrying entries, oldest first.
func (s *OutboxStore) ListPending(ctx context.Context, limit int) ([]outbox.Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+outboxColumns+` FROM outbox
		WHERE status IN ($1, $2) ORDER BY created_at ASC LIMIT $3`,
		outbox.StatusPending, outbox.StatusRetrying, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox: %w", err)
	}
	return collectOutbox(rows)
}

// ListFailed returns entries that exhausted their attempts.
func (s *OutboxStore) ListFailed(ctx context.Context, limit int) ([]outbox.Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+outboxColumns+` FROM outbox
		WHERE status = $1 AND attempts >= max_attempts ORDER BY last_attempted_at DESC LIMIT $2`,
		outbox.StatusFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed outbox: %w", err)
	}
	return collectOutbox(rows)
}

// CountByStatus groups entries by status.
func (s *OutboxStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count outbox: %w", err)
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Delete removes an entry.
func (s *OutboxStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM outbox WHERE id = $1`, id)
	return err
}
