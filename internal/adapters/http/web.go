package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/perf"
	auditStore "storefront/internal/adapters/storage/audit"
	contentStore "storefront/internal/adapters/storage/content"
	eventStore "storefront/internal/adapters/storage/event"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	outboxStore "storefront/internal/adapters/storage/outbox"
	"storefront/internal/application/orchestrators"
)

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Stores holds all storage dependencies.
type Stores struct {
	EventStore   eventStore.Store
	ContentStore contentStore.Store
	InquiryStore inquiryStore.Store
	OutboxStore  outboxStore.Store
	AuditStore   auditStore.Store // optional; nil disables the activity log
	DB           Pinger
}

// Config carries everything NewMux needs besides the stores.
type Config struct {
	Gate           *middleware.Gate
	Collector      *perf.Collector
	Outbox         *orchestrators.OutboxProcessor
	StaticDir      string
	CSRFKey        []byte // 32 bytes
	Secure         bool   // production: Secure cookies and strict CSRF origin checks
	TrustedOrigins []string
	RateLimiter    *middleware.RateLimiter // owned by the caller, who stops it; nil disables rate limiting
	SlowRequest    time.Duration
	TimeZone       *time.Location // used for the calendar feed
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global auth gate (set by NewMux)
var gate *middleware.Gate

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global outbox processor, used by the admin retry endpoint (set by NewMux)
var outboxProcessor *orchestrators.OutboxProcessor

// storeTZ is the store's local time zone.
var storeTZ = time.UTC

// NewMux wires HTTP handlers for the app.
func NewMux(cfg Config, s *Stores) http.Handler {
	stores = s
	gate = cfg.Gate
	perfCollector = cfg.Collector
	outboxProcessor = cfg.Outbox
	if cfg.TimeZone != nil {
		storeTZ = cfg.TimeZone
	}

	mux := http.NewServeMux()
	if cfg.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}
	registerRoutes(mux)

	// Outer to inner: Recover -> SecurityHeaders -> CSRF -> RateLimit -> Timing -> Mux.
	// Timing sits next to the mux so it can read the matched route pattern.
	chain := []func(http.Handler) http.Handler{
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.Secure, cfg.TrustedOrigins),
	}
	if cfg.RateLimiter != nil {
		chain = append(chain, middleware.RateLimit(cfg.RateLimiter))
	}
	chain = append(chain, middleware.Timing(cfg.Collector, cfg.SlowRequest))
	h := middleware.Chain(mux, chain...)
	return otelhttp.NewHandler(h, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, "/static/") && r.URL.Path != "/healthz"
		}),
	)
}
