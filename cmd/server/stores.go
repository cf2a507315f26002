package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	web "storefront/internal/adapters/http"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/storage"
	auditStore "storefront/internal/adapters/storage/audit"
	contentStore "storefront/internal/adapters/storage/content"
	eventStore "storefront/internal/adapters/storage/event"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	outboxStore "storefront/internal/adapters/storage/outbox"
	"storefront/internal/adapters/storage/postgres"
	"storefront/internal/config"
)

// openStores connects the configured database, migrates it and builds the stores.
// The returned func closes the connection.
func openStores(ctx context.Context, cfg *config.Config, collector *perf.Collector) (*web.Stores, func(), error) {
	if cfg.Database.Driver == config.DriverPostgres {
		return openPostgres(ctx, cfg.Database.URL)
	}
	return openSQLite(cfg.Database.Path, collector)
}

func openSQLite(path string, collector *perf.Collector) (*web.Stores, func(), error) {
	// WAL mode, foreign keys and a busy timeout so concurrent writers wait instead of failing.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database_ready", "driver", config.DriverSQLite, "path", path)

	timed := storage.NewTimedDB(db, collector, storage.SlowQueryThreshold())
	stores := &web.Stores{
		EventStore:   eventStore.NewSQLiteStore(timed),
		ContentStore: contentStore.NewSQLiteStore(timed),
		InquiryStore: inquiryStore.NewSQLiteStore(timed),
		OutboxStore:  outboxStore.NewSQLiteStore(timed),
		AuditStore:   auditStore.NewSQLiteStore(timed),
		DB:           timed,
	}
	return stores, func() { db.Close() }, nil
}

func openPostgres(ctx context.Context, url string) (*web.Stores, func(), error) {
	pool, err := postgres.Open(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database_ready", "driver", config.DriverPostgres)

	stores := &web.Stores{
		EventStore:   postgres.NewEventStore(pool),
		ContentStore: postgres.NewContentStore(pool),
		InquiryStore: postgres.NewInquiryStore(pool),
		OutboxStore:  postgres.NewOutboxStore(pool),
		AuditStore:   postgres.NewAuditStore(pool),
		DB:           poolPinger{pool},
	}
	return stores, pool.Close, nil
}

// poolPinger adapts a pgx pool to web.Pinger.
type poolPinger struct{ pool *pgxpool.Pool }

func (p poolPinger) PingContext(ctx context.Context) error { return p.pool.Ping(ctx) }
