package eventclient

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain/content"
	"storefront/internal/domain/inquiry"
)

// GetSection decodes content section key into dst.
func (c *Client) GetSection(ctx context.Context, key string, dst any) error {
	return c.do(ctx, http.MethodGet, "/api/content/"+key, nil, dst)
}

// SaveSection replaces content section key with v. Requires an admin session.
func (c *Client) SaveSection(ctx context.Context, key string, v any) error {
	return c.do(ctx, http.MethodPut, "/api/content/"+key, v, nil)
}

// About returns the about section.
func (c *Client) About(ctx context.Context) (content.About, error) {
	var a content.About
	err := c.GetSection(ctx, content.SectionAbout, &a)
	return a, err
}

// SaveAbout replaces the about section.
func (c *Client) SaveAbout(ctx context.Context, a content.About) error {
	return c.SaveSection(ctx, content.SectionAbout, a)
}

// Contact returns the contact section.
func (c *Client) Contact(ctx context.Context) (content.ContactInfo, error) {
	var ci content.ContactInfo
	err := c.GetSection(ctx, content.SectionContact, &ci)
	return ci, err
}

// SaveContact replaces the contact section.
func (c *Client) SaveContact(ctx context.Context, ci content.ContactInfo) error {
	return c.SaveSection(ctx, content.SectionContact, ci)
}

// ContactMessages lists the newest contact form messages.
func (c *Client) ContactMessages(ctx context.Context) ([]inquiry.ContactMessage, error) {
	var msgs []inquiry.ContactMessage
	err := c.do(ctx, http.MethodGet, "/api/admin/messages", nil, &msgs)
	return msgs, err
}

// Subscribers lists newsletter subscriptions.
func (c *Client) Subscribers(ctx context.Context) ([]inquiry.Subscription, error) {
	var subs []inquiry.Subscription
	err := c.do(ctx, http.MethodGet, "/api/admin/subscribers", nil, &subs)
	return subs, err
}

// ListSection manages a list-shaped content section (carousel, testimonials) through
// whole-list replacement. Items are identified by an integer id assigned on create.
type ListSection[T any] struct {
	c     *Client
	key   string
	id    func(T) int64
	setID func(*T, int64)
}

// Slides manages the carousel.
func (c *Client) Slides() *ListSection[content.CarouselSlide] {
	return &ListSection[content.CarouselSlide]{
		c:     c,
		key:   content.SectionCarousel,
		id:    func(s content.CarouselSlide) int64 { return s.ID },
		setID: func(s *content.CarouselSlide, id int64) { s.ID = id },
	}
}

// Testimonials manages the testimonials list.
func (c *Client) Testimonials() *ListSection[content.Testimonial] {
	return &ListSection[content.Testimonial]{
		c:     c,
		key:   content.SectionTestimonials,
		id:    func(t content.Testimonial) int64 { return t.ID },
		setID: func(t *content.Testimonial, id int64) { t.ID = id },
	}
}

// List returns the section items. A section that was never saved is empty.
func (s *ListSection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := s.c.GetSection(ctx, s.key, &items)
	if IsNotFound(err) {
		return []T{}, nil
	}
	return items, err
}

// Create appends item with the next free id.
func (s *ListSection[T]) Create(ctx context.Context, item T) (T, error) {
	items, err := s.List(ctx)
	if err != nil {
		return item, err
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = s.id(it)
	}
	s.setID(&item, content.NextID(ids))
	if err := s.c.SaveSection(ctx, s.key, append(items, item)); err != nil {
		return item, err
	}
	return item, nil
}

// Update replaces the item with id.
func (s *ListSection[T]) Update(ctx context.Context, id int64, item T) (T, error) {
	items, err := s.List(ctx)
	if err != nil {
		return item, err
	}
	i := s.index(items, id)
	if i < 0 {
		return item, s.notFound(id)
	}
	s.setID(&item, id)
	items[i] = item
	if err := s.c.SaveSection(ctx, s.key, items); err != nil {
		return item, err
	}
	return item, nil
}

// Remove deletes the item with id.
func (s *ListSection[T]) Remove(ctx context.Context, id int64) error {
	items, err := s.List(ctx)
	if err != nil {
		return err
	}
	i := s.index(items, id)
	if i < 0 {
		return s.notFound(id)
	}
	return s.c.SaveSection(ctx, s.key, append(items[:i], items[i+1:]...))
}

func (s *ListSection[T]) index(items []T, id int64) int {
	for i, it := range items {
		if s.id(it) == id {
			return i
		}
	}
	return -1
}

func (s *ListSection[T]) notFound(id int64) error {
	return &APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("%s item %d not found", s.key, id)}
}

// Section reads and replaces one singleton section.
type Section[T any] struct {
	c   *Client
	key string
}

// AboutSection returns the about section backend.
func (c *Client) AboutSection() Section[content.About] {
	return Section[content.About]{c: c, key: content.SectionAbout}
}

// ContactSection returns the contact section backend.
func (c *Client) ContactSection() Section[content.ContactInfo] {
	return Section[content.ContactInfo]{c: c, key: content.SectionContact}
}

// Get fetches the section. A section that was never saved reads as the zero value.
func (s Section[T]) Get(ctx context.Context) (T, error) {
	var v T
	err := s.c.GetSection(ctx, s.key, &v)
	if IsNotFound(err) {
		var zero T
		return zero, nil
	}
	return v, err
}

// Save replaces the section.
func (s Section[T]) Save(ctx context.Context, v T) error {
	return s.c.SaveSection(ctx, s.key, v)
}
