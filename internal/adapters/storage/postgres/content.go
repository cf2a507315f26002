package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/adapters/storage"
	contentstore "storefront/internal/adapters/storage/content"
)

// ContentStore implements the content Store on PostgreSQL with JSONB bodies.
type ContentStore struct {
	pool *pgxpool.Pool
}

var _ contentstore.Store = (*ContentStore)(nil)

// NewContentStore creates a ContentStore.
func NewContentStore(pool *pgxpool.Pool) *ContentStore {
	return &ContentStore{pool: pool}
}

// Get decodes section key into dst.
func (s *ContentStore) Get(ctx context.Context, key string, dst any) error {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM content_section WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get content %s: %w", key, err)
	}
	return json.Unmarshal(body, dst)
}

// Put upserts section key.
func (s *ContentStore) Put(ctx context.Context, key string, v any, now time.Time) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode content %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO content_section (key, body, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		key, body, now.UTC())
	return err
}

// UpdatedAt returns the last write time of key.
func (s *ContentStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts time.Time
	err := s.pool.QueryRow(ctx, `SELECT updated_at FROM content_section WHERE key = $1`, key).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, storage.ErrNotFound
	}
	return ts, err
}
