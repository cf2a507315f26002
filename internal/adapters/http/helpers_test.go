package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"storefront/internal/adapters/email"
	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/http/perf"
	"storefront/internal/adapters/storage"
	auditStore "storefront/internal/adapters/storage/audit"
	contentStore "storefront/internal/adapters/storage/content"
	eventStore "storefront/internal/adapters/storage/event"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	outboxStore "storefront/internal/adapters/storage/outbox"
	"storefront/internal/application/orchestrators"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "harbor-lights"
)

var testNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// testEnv is a fully wired server over an in-memory database.
type testEnv struct {
	handler http.Handler
	stores  *Stores
	clock   *testClock
	mail    *email.NoopSender
}

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &Stores{
		EventStore:   eventStore.NewSQLiteStore(db),
		ContentStore: contentStore.NewSQLiteStore(db),
		InquiryStore: inquiryStore.NewSQLiteStore(db),
		OutboxStore:  outboxStore.NewSQLiteStore(db),
		AuditStore:   auditStore.NewSQLiteStore(db),
		DB:           db,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	clock := &testClock{t: testNow}
	s := newTestStores(t)
	mail := email.NewNoopSender()
	g := middleware.NewGate(middleware.GateConfig{
		Credential: middleware.Credential{Username: testAdminUser, PasswordHash: hash},
		TTL:        time.Hour,
		Now:        clock.Now,
	}, middleware.NewMemorySessionStore())

	prevNow := timeNow
	timeNow = clock.Now
	t.Cleanup(func() { timeNow = prevNow })

	limiter := middleware.NewRateLimiter(1000, time.Second)
	t.Cleanup(limiter.Stop)

	h := NewMux(Config{
		Gate:      g,
		Collector: perf.NewCollector(1000),
		Outbox: orchestrators.NewOutboxProcessor(s.OutboxStore,
			orchestrators.MailExecutors(mail, orchestrators.MailConfig{StoreName: "Adams Shore Market", Inbox: "info@example.com"}),
			orchestrators.WithClock(clock.Now)),
		CSRFKey:     bytes.Repeat([]byte{7}, 32),
		RateLimiter: limiter,
	}, s)
	return &testEnv{handler: h, stores: s, clock: clock, mail: mail}
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// bare sends a request with no body and no Content-Type, as curl or a form-less fetch would.
func (e *testEnv) bare(method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login signs in as the test admin and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do("POST", "/api/admin/login", map[string]string{"username": testAdminUser, "password": testAdminPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decodeBody(t, rec, &body)
	return body.Message
}
