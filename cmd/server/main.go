package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	emailPkg "storefront/internal/adapters/email"
	web "storefront/internal/adapters/http"
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/scheduler"
	"storefront/internal/adapters/storage"
	"storefront/internal/application/orchestrators"
	"storefront/internal/config"
	"storefront/internal/telemetry"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", envOrDefault("STOREFRONT_CONFIG", "storefront.yaml"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg)

	if cfg.SSMPrefix != "" {
		client, err := config.NewSSMClient(ctx)
		if err != nil {
			return err
		}
		if err := cfg.ApplySSM(ctx, client); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry_shutdown_failed", "error", err)
		}
	}()

	// Performance instrumentation: the collector feeds the timing middleware and the SQLite query wrapper.
	collector := perf.NewCollector(perf.DefaultRingSize)

	stores, closeStores, err := openStores(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer closeStores()

	if cfg.Seed.Enabled {
		seed, err := orchestrators.DefaultSeed()
		if err != nil {
			return fmt.Errorf("parse seed: %w", err)
		}
		deps := orchestrators.SeedSiteDeps{ContentStore: stores.ContentStore, EventStore: stores.EventStore, Now: time.Now}
		if err := orchestrators.ExecuteSeedSite(ctx, seed, deps); err != nil {
			return fmt.Errorf("seed site: %w", err)
		}
	}

	hash, err := cfg.AdminPasswordHash()
	if err != nil {
		return err
	}
	gate := middleware.NewGate(middleware.GateConfig{
		Credential: middleware.Credential{Username: cfg.Admin.Username, PasswordHash: hash},
		TTL:        cfg.Admin.SessionTTL,
		Secure:     cfg.IsProduction(),
	}, middleware.NewMemorySessionStore())

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.Email.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_delivery_disabled", "reason", "resend_api_key not set")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}
	outbox := orchestrators.NewOutboxProcessor(stores.OutboxStore, orchestrators.MailExecutors(sender, orchestrators.MailConfig{
		StoreName: cfg.Email.StoreName,
		Inbox:     cfg.Email.Inbox,
		ReplyTo:   cfg.Email.ReplyTo,
	}))

	jobs := scheduler.New()
	if err := jobs.Add(scheduler.JobSessionSweep, cfg.Jobs.SessionSweep, scheduler.SessionSweepJob(gate)); err != nil {
		return err
	}
	if err := jobs.Add(scheduler.JobOutbox, cfg.Jobs.Outbox, scheduler.OutboxJob(outbox)); err != nil {
		return err
	}
	jobs.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := jobs.Stop(sctx); err != nil {
			slog.Warn("scheduler_stop_timeout", "error", err)
		}
	}()

	key, err := csrfKey(cfg)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, time.Second)
	defer limiter.Stop()

	handler := web.NewMux(web.Config{
		Gate:           gate,
		Collector:      collector,
		Outbox:         outbox,
		StaticDir:      cfg.StaticDir,
		CSRFKey:        key,
		Secure:         cfg.IsProduction(),
		TrustedOrigins: cfg.Security.TrustedOrigins,
		RateLimiter:    limiter,
		SlowRequest:    middleware.SlowRequestThreshold(),
		TimeZone:       loc,
	}, stores)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"driver", cfg.Database.Driver,
			"schema", storage.LatestSchemaVersion(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// setupLogger installs the default slog handler: JSON in production, text otherwise.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// csrfKey returns the configured key, or a random one outside production.
// A random key invalidates CSRF tokens on every restart.
func csrfKey(cfg *config.Config) ([]byte, error) {
	if cfg.Security.CSRFKey != "" {
		return cfg.CSRFKeyBytes()
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("csrf_key_generated", "reason", "security.csrf_key not set")
	return key, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
