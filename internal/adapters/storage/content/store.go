package content

import (
	"context"
	"time"
)

// Store persists content sections as whole JSON documents keyed by section.
type Store interface {
	// Get decodes section key into dst.
	// POST: storage.ErrNotFound when the section was never saved
	Get(ctx context.Context, key string, dst any) error

	// Put replaces section key with v.
	Put(ctx context.Context, key string, v any, now time.Time) error

	// UpdatedAt returns when section key was last written.
	// POST: storage.ErrNotFound when the section was never saved
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
