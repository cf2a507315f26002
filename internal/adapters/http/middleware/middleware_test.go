package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/csrf"
)

func newTestLimiter(rate int, interval time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(rate, interval)
	rl.now = clock.Now
	return rl, clock
}

// TestRateLimiter_Allow tests bucket exhaustion, refill and per-client isolation.
func TestRateLimiter_Allow(t *testing.T) {
	rl, clock := newTestLimiter(3, time.Second)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other client should not share the bucket")
	}

	clock.Advance(500 * time.Millisecond)
	if rl.Allow("10.0.0.1") {
		t.Error("partial interval should not refill")
	}
	clock.Advance(500 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("full interval should refill")
	}
}

// TestRateLimiter_Cleanup tests that idle clients are forgotten.
func TestRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Second)
	defer rl.Stop()
	rl.Allow("a")
	clock.Advance(2 * time.Minute)
	rl.Allow("b")
	clock.Advance(4 * time.Minute)

	if n := rl.cleanup(5 * time.Minute); n != 1 {
		t.Errorf("cleanup removed %d, want 1", n)
	}
	rl.Stop()
	rl.Stop()
}

// TestRateLimit_Middleware tests the 429 response keyed on client IP.
func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)
	defer rl.Stop()
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := send("192.0.2.1:5000"); code != http.StatusOK {
		t.Fatalf("first = %d", code)
	}
	// Same IP, different source port.
	if code := send("192.0.2.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("second = %d, want 429", code)
	}
}

// TestClientIP tests RemoteAddr parsing.
func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"192.0.2.1:1234": "192.0.2.1",
		"[::1]:8080":     "::1",
		"pipe":           "pipe",
	}
	for remote, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		if got := ClientIP(r); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", remote, got, want)
		}
	}
}

// TestSecurityHeaders tests that the headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

// TestRecover tests that a panic becomes a 500.
func TestRecover(t *testing.T) {
	rr := httptest.NewRecorder()
	Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Internal server error") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

// TestChain tests that the first middleware is outermost.
func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Errorf("order = %v", order)
	}
}

// TestCSRF tests that JSON and the API are exempt and forms need a token.
func TestCSRF(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	var token string
	handler := CSRF(key, false, []string{"localhost:8080"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = csrf.Token(r)
		w.WriteHeader(http.StatusOK)
	}))

	// JSON bypasses the check.
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("json post = %d, want 200", rr.Code)
	}

	// API calls without a body or content type bypass the check too.
	for _, method := range []string{http.MethodDelete, http.MethodPost} {
		req = httptest.NewRequest(method, "/api/events/1", nil)
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("bodyless %s = %d, want 200", method, rr.Code)
		}
	}

	// A form post without a token is rejected.
	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("email=a%40b.c"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("tokenless form post = %d, want 403", rr.Code)
	}

	// A GET issues a token and cookie that a later post can use.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if token == "" || len(rr.Result().Cookies()) == 0 {
		t.Fatal("expected a token and csrf cookie from GET")
	}
	form := url.Values{"gorilla.csrf.Token": {token}, "email": {"a@b.c"}}
	req = httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("form post with token = %d, want 200", rr.Code)
	}
}
