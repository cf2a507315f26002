package audit

import (
	"context"

	domain "storefront/internal/domain/audit"
)

// Store persists the admin activity log.
type Store interface {
	// Save persists an entry.
	// PRE: e was built with domain.New
	Save(ctx context.Context, e domain.Entry) error

	// List returns entries matching filter, newest first.
	// PRE: limit > 0, offset >= 0
	List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Entry, error)

	// Count returns how many entries match filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Filter narrows List and Count. Nil fields match everything.
type Filter struct {
	Category *domain.Category
	Actor    *string
}

// Where renders the filter as a SQL condition using placeholder(n) for the nth argument.
func (f Filter) Where(placeholder func(n int) string) (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if f.Category != nil {
		args = append(args, string(*f.Category))
		clause += " AND category = " + placeholder(len(args))
	}
	if f.Actor != nil {
		args = append(args, *f.Actor)
		clause += " AND actor = " + placeholder(len(args))
	}
	return clause, args
}
