package event

import (
	"context"
	"time"

	domain "storefront/internal/domain/event"
)

// Store is the Record Store boundary for events.
// Implementations return storage.ErrNotFound for unknown ids.
type Store interface {
	// List returns every event in insertion order.
	List(ctx context.Context) ([]domain.Event, error)

	// GetByID returns one event.
	// POST: storage.ErrNotFound when id does not exist
	GetByID(ctx context.Context, id int64) (domain.Event, error)

	// Create persists d as a new event.
	// PRE: d has been validated
	// POST: returned event carries a fresh unique ID and CreatedAt = now
	Create(ctx context.Context, d domain.Draft, now time.Time) (domain.Event, error)

	// Update replaces the mutable fields of an existing event.
	// PRE: d has been validated
	// POST: ID and CreatedAt unchanged; storage.ErrNotFound when id does not exist
	Update(ctx context.Context, id int64, d domain.Draft) (domain.Event, error)

	// Delete removes an event.
	// POST: storage.ErrNotFound when id does not exist
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
}
