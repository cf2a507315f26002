package orchestrators

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"storefront/internal/adapters/storage"
	"storefront/internal/domain/content"
	"storefront/internal/domain/event"
)

//go:embed seed_site.yaml
var defaultSeed []byte

// SeedData is the initial site content and event list.
type SeedData struct {
	content.Site `yaml:",inline"`
	Events       []event.Draft `yaml:"events"`
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(raw []byte) (SeedData, error) {
	var sd SeedData
	if err := yaml.Unmarshal(raw, &sd); err != nil {
		return SeedData{}, fmt.Errorf("parse seed: %w", err)
	}
	for _, key := range content.Sections {
		v, _ := sd.Site.Section(key)
		if err := content.ValidateSection(key, v); err != nil {
			return SeedData{}, fmt.Errorf("seed section %s: %w", key, err)
		}
	}
	for i, d := range sd.Events {
		sd.Events[i] = d.Normalize()
		if err := sd.Events[i].Validate(); err != nil {
			return SeedData{}, fmt.Errorf("seed event %d: %w", i, err)
		}
	}
	return sd, nil
}

// DefaultSeed returns the built-in seed.
func DefaultSeed() (SeedData, error) {
	return ParseSeed(defaultSeed)
}

// EventStoreForSeed defines the store interface needed by SeedSite.
type EventStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, d event.Draft, now time.Time) (event.Event, error)
}

// SeedSiteDeps holds dependencies for SeedSite.
type SeedSiteDeps struct {
	ContentStore ContentStoreForOrchestrator
	EventStore   EventStoreForSeed
	Now          func() time.Time
}

// ExecuteSeedSite fills in sections that were never saved and, when the event table is
// empty, the seed events.
// POST: existing sections and events are left untouched
func ExecuteSeedSite(ctx context.Context, seed SeedData, deps SeedSiteDeps) error {
	now := deps.Now()
	var seeded []string
	for _, key := range content.Sections {
		var probe json.RawMessage
		err := deps.ContentStore.Get(ctx, key, &probe)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		v, _ := seed.Site.Section(key)
		if err := deps.ContentStore.Put(ctx, key, v, now); err != nil {
			return err
		}
		seeded = append(seeded, key)
	}

	n, err := deps.EventStore.Count(ctx)
	if err != nil {
		return err
	}
	events := 0
	if n == 0 {
		for _, d := range seed.Events {
			if _, err := deps.EventStore.Create(ctx, d, now); err != nil {
				return err
			}
			events++
		}
	}

	if len(seeded) > 0 || events > 0 {
		slog.Info("seed_event", "event", "site_seeded", "sections", seeded, "events", events)
	}
	return nil
}
