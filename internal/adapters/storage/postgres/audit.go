package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	auditstore "storefront/internal/adapters/storage/audit"
	"storefront/internal/domain/audit"
)

// AuditStore implements the audit Store on PostgreSQL.
type AuditStore struct {
	pool *pgxpool.Pool
}

var _ auditstore.Store = (*AuditStore)(nil)

// NewAuditStore creates an AuditStore.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// Save inserts e.
func (s *AuditStore) Save(ctx context.Context, e audit.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_entry (id, at, category, action, severity, actor, resource_type, resource_id, description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.At.UTC(), string(e.Category), string(e.Action), string(e.Severity),
		e.Actor, e.ResourceType, e.ResourceID, e.Description, e.IPAddress, e.UserAgent)
	if err != nil {
		return fmt.Errorf("save audit entry: %w", err)
	}
	return nil
}

// List returns a page of entries matching filter, newest first.
func (s *AuditStore) List(ctx context.Context, filter auditstore.Filter, limit, offset int) ([]audit.Entry, error) {
	where, args := filter.Where(dollar)
	args = append(args, limit, offset)
	query := `SELECT id, at, category, action, severity, actor, resource_type, resource_id, description, ip_address, user_agent
		FROM audit_entry` + where +
		` ORDER BY at DESC, id DESC LIMIT ` + dollar(len(args)-1) + ` OFFSET ` + dollar(len(args))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var e audit.Entry
		err := rows.Scan(&e.ID, &e.At, &e.Category, &e.Action, &e.Severity, &e.Actor,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress, &e.UserAgent)
		if err != nil {
			return nil, err
		}
		e.At = e.At.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns how many entries match filter.
func (s *AuditStore) Count(ctx context.Context, filter auditstore.Filter) (int, error) {
	where, args := filter.Where(dollar)
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entry`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}
