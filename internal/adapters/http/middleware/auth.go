package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CookieName is the admin session cookie.
const CookieName = "adminSession"

// DefaultSessionTTL is how long an admin session lives.
const DefaultSessionTTL = time.Hour

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	ErrUnauthorized       = errors.New("admin authentication required")
	ErrSessionExpired     = errors.New("admin session expired")
	ErrSessionNotFound    = errors.New("session not found")
)

// Message returns the caller-facing text for an auth error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid admin credentials"
	case errors.Is(err, ErrSessionExpired):
		return "Admin session expired"
	default:
		return "Admin authentication required"
	}
}

type contextKey string

const sessionContextKey contextKey = "adminSession"

// Session is a token-keyed, time-bounded proof of admin login.
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// Expired reports whether s is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore holds admin sessions. The Gate is its only writer.
type SessionStore interface {
	// Get returns the session for token or ErrSessionNotFound. Expiry is not checked.
	Get(ctx context.Context, token string) (Session, error)
	// Set stores s under s.Token.
	Set(ctx context.Context, s Session) error
	// Delete removes token; deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes every session expired at now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// MemorySessionStore is a process-local SessionStore. Sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

// Get returns the session for token.
func (m *MemorySessionStore) Get(_ context.Context, token string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Set stores s.
func (m *MemorySessionStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

// Delete removes token.
func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// DeleteExpired purges expired sessions.
func (m *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Credential is the single configured admin login.
type Credential struct {
	Username     string
	PasswordHash []byte // bcrypt
}

// Verify reports whether username and password match.
// The bcrypt comparison always runs so a wrong username costs the same as a wrong password.
func (c Credential) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password))
	return userOK && passErr == nil && c.Username != ""
}

// GateConfig configures a Gate.
type GateConfig struct {
	Credential Credential
	TTL        time.Duration
	Secure     bool // set the cookie Secure flag
	Now        func() time.Time
}

// Gate issues, checks and revokes admin sessions.
type Gate struct {
	store  SessionStore
	cred   Credential
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewGate creates a Gate backed by store.
func NewGate(cfg GateConfig, store SessionStore) *Gate {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Gate{store: store, cred: cfg.Credential, ttl: cfg.TTL, secure: cfg.Secure, now: cfg.Now}
}

// TTL returns the session lifetime.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Login checks the credential and mints a session.
// POST: on failure no session is created and ErrInvalidCredentials is returned
func (g *Gate) Login(ctx context.Context, username, password string) (Session, error) {
	if !g.cred.Verify(username, password) {
		slog.Info("auth_event", "event", "login_failed", "username", username)
		return Session{}, ErrInvalidCredentials
	}
	token, err := generateToken()
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: token, Username: g.cred.Username, ExpiresAt: g.now().Add(g.ttl)}
	if err := g.store.Set(ctx, s); err != nil {
		return Session{}, err
	}
	slog.Info("auth_event", "event", "login_success", "username", s.Username, "expires_at", s.ExpiresAt)
	return s, nil
}

// Logout removes the session for token. Unknown or empty tokens are ignored.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.store.Delete(ctx, token); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}

// Check returns the live session for token.
// POST: an expired session is purged and ErrSessionExpired returned;
// a missing or unknown token yields ErrUnauthorized
func (g *Gate) Check(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	s, err := g.store.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if s.Expired(g.now()) {
		if err := g.store.Delete(ctx, token); err != nil {
			return Session{}, err
		}
		slog.Info("auth_event", "event", "session_expired", "username", s.Username)
		return Session{}, ErrSessionExpired
	}
	return s, nil
}

// Status is the public view of a session check.
type Status struct {
	IsAdmin  bool   `json:"isAdmin"`
	Username string `json:"username,omitempty"`
}

// Status reports whether token belongs to a live session.
func (g *Gate) Status(ctx context.Context, token string) (Status, error) {
	s, err := g.Check(ctx, token)
	switch {
	case err == nil:
		return Status{IsAdmin: true, Username: s.Username}, nil
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return Status{}, nil
	default:
		return Status{}, err
	}
}

// Sweep purges every expired session.
func (g *Gate) Sweep(ctx context.Context) (int, error) {
	return g.store.DeleteExpired(ctx, g.now())
}

// RequireAdmin rejects requests without a live session with 401 JSON.
// Allowed requests carry the session in their context.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := g.Check(r.Context(), TokenFromRequest(r))
		if err != nil {
			status, msg := http.StatusUnauthorized, Message(err)
			if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrSessionExpired) {
				slog.Error("internal_error", "error", err, "path", r.URL.Path)
				status, msg = http.StatusInternalServerError, "Internal server error"
			}
			writeJSONMessage(w, status, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), s)))
	})
}

// TokenFromRequest returns the admin session cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetCookie writes the session cookie with a max-age matching the session TTL.
func (g *Gate) SetCookie(w http.ResponseWriter, s Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
	})
}

// ClearCookie expires the session cookie.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionFromContext returns the session set by RequireAdmin.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// ContextWithSession returns ctx carrying s.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
