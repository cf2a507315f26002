// Package eventclient is the API-backed façade the admin tools use to read and change
// store events and content. It keeps the admin session in a cookie jar and caches the
// event list, refreshing it after every mutation.
package eventclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"storefront/internal/domain/event"
	"storefront/internal/domain/validation"
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Message string
	Fields  validation.Errors
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Fields.Error())
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// FieldErrors returns the field-level failures of a 400 response.
func (e *APIError) FieldErrors() validation.Errors {
	return e.Fields
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the auth gate.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// Status is the admin session state as seen by the server.
type Status struct {
	IsAdmin  bool   `json:"isAdmin"`
	Username string `json:"username,omitempty"`
}

// Client talks to one storefront server.
type Client struct {
	base *url.URL
	http *http.Client

	mu     sync.Mutex
	events []event.Event
	cached bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc for requests. A cookie jar is attached if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c := &Client{base: base, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors"`
}

// do sends a JSON request and decodes a JSON response into out (when non-nil).
// Every request carries a JSON content type so the server's CSRF check exempts it.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Fields = env.Errors
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Login starts an admin session. The session cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) (Status, error) {
	var resp struct {
		Username string `json:"username"`
	}
	creds := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", creds, &resp); err != nil {
		return Status{}, err
	}
	return Status{IsAdmin: true, Username: resp.Username}, nil
}

// Logout ends the admin session. Logging out twice is not an error.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
}

// Status asks the server whether the client's session is live.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/api/admin/status", nil, &st)
	return st, err
}

// ListEvents returns the event list, from cache when present.
func (c *Client) ListEvents(ctx context.Context) ([]event.Event, error) {
	c.mu.Lock()
	if c.cached {
		out := append([]event.Event(nil), c.events...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()
	return c.RefreshEvents(ctx)
}

// RefreshEvents fetches the event list and replaces the cache.
func (c *Client) RefreshEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &events); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.events = events
	c.cached = true
	c.mu.Unlock()
	return append([]event.Event(nil), events...), nil
}

// InvalidateEvents drops the cached event list.
func (c *Client) InvalidateEvents() {
	c.mu.Lock()
	c.events = nil
	c.cached = false
	c.mu.Unlock()
}

// afterMutation invalidates the cache and refetches it before the caller sees the result.
// A failed refetch leaves the cache empty so the next ListEvents retries.
func (c *Client) afterMutation(ctx context.Context) {
	c.InvalidateEvents()
	if _, err := c.RefreshEvents(ctx); err != nil {
		slog.Warn("event_cache_refresh_failed", "error", err)
	}
}

func eventPath(id int64) string {
	return "/api/events/" + strconv.FormatInt(id, 10)
}

// GetEvent fetches one event from the server, bypassing the cache.
func (c *Client) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := c.do(ctx, http.MethodGet, eventPath(id), nil, &e)
	return e, err
}

// CreateEvent adds an event. Requires an admin session.
func (c *Client) CreateEvent(ctx context.Context, d event.Draft) (event.Event, error) {
	var e event.Event
	if err := c.do(ctx, http.MethodPost, "/api/events", d, &e); err != nil {
		return event.Event{}, err
	}
	c.afterMutation(ctx)
	return e, nil
}

// UpdateEvent merges p over the current record and stores the result.
// PRE: the event exists; otherwise an APIError with status 404 is returned
func (c *Client) UpdateEvent(ctx context.Context, id int64, p event.Patch) (event.Event, error) {
	current, err := c.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	var e event.Event
	if err := c.do(ctx, http.MethodPut, eventPath(id), p.Apply(current.Draft()), &e); err != nil {
		return event.Event{}, err
	}
	c.afterMutation(ctx)
	return e, nil
}

// RemoveEvent deletes an event.
func (c *Client) RemoveEvent(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, eventPath(id), nil, nil); err != nil {
		return err
	}
	c.afterMutation(ctx)
	return nil
}

// EventBackend adapts the event calls to whole-draft updates for the admin list manager.
type EventBackend struct {
	c *Client
}

// Events returns the event list backend.
func (c *Client) Events() EventBackend {
	return EventBackend{c: c}
}

// List returns the cached event list.
func (b EventBackend) List(ctx context.Context) ([]event.Event, error) {
	return b.c.ListEvents(ctx)
}

// Create adds an event.
func (b EventBackend) Create(ctx context.Context, d event.Draft) (event.Event, error) {
	return b.c.CreateEvent(ctx, d)
}

// Update overwrites every field of the event with d.
func (b EventBackend) Update(ctx context.Context, id int64, d event.Draft) (event.Event, error) {
	return b.c.UpdateEvent(ctx, id, event.Patch{
		Title:       &d.Title,
		Description: &d.Description,
		Month:       &d.Month,
		Day:         &d.Day,
		Time:        &d.Time,
		Location:    &d.Location,
		Color:       &d.Color,
	})
}

// Remove deletes an event.
func (b EventBackend) Remove(ctx context.Context, id int64) error {
	return b.c.RemoveEvent(ctx, id)
}
