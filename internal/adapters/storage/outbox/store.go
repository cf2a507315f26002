package outbox

import (
	"context"

	domain "storefront/internal/domain/outbox"
)

// Store defines persistence for outbox entries.
type Store interface {
	// GetByID retrieves an entry.
	// POST: storage.ErrNotFound when id does not exist
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: e has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns up to limit pending or retrying entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns up to limit entries that exhausted their attempts, latest attempt first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// CountByStatus returns the number of entries per status.
	CountByStatus(ctx context.Context) (map[string]int, error)

	// Delete removes an entry.
	Delete(ctx context.Context, id string) error
}
