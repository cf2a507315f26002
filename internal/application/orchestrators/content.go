package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/adapters/storage"
	"storefront/internal/domain/content"
)

// ContentStoreForOrchestrator defines the store interface needed by content orchestrators.
type ContentStoreForOrchestrator interface {
	Get(ctx context.Context, key string, dst any) error
	Put(ctx context.Context, key string, v any, now time.Time) error
}

// --- Save Content ---

// SaveContentInput carries one whole section. Value is the decode target returned by
// content.NewSection for Section.
type SaveContentInput struct {
	Section string
	Value   any
	Actor   string
}

// SaveContentDeps holds dependencies for SaveContent.
type SaveContentDeps struct {
	ContentStore ContentStoreForOrchestrator
	Now          func() time.Time
}

// ExecuteSaveContent validates and fully replaces a content section.
// PRE: caller passed the admin gate
// POST: on validation failure the stored section is unchanged
func ExecuteSaveContent(ctx context.Context, input SaveContentInput, deps SaveContentDeps) error {
	if !content.IsSection(input.Section) {
		return content.ErrUnknownSection
	}
	if err := content.ValidateSection(input.Section, input.Value); err != nil {
		return err
	}
	if err := deps.ContentStore.Put(ctx, input.Section, input.Value, deps.Now()); err != nil {
		return err
	}
	slog.Info("content_event", "event", "content_saved", "section", input.Section, "actor", input.Actor)
	return nil
}

// --- Load Site ---

// LoadSiteDeps holds dependencies for LoadSite.
type LoadSiteDeps struct {
	ContentStore ContentStoreForOrchestrator
}

// ExecuteLoadSite reads every section. Sections that were never saved stay zero.
func ExecuteLoadSite(ctx context.Context, deps LoadSiteDeps) (content.Site, error) {
	var site content.Site
	for _, key := range content.Sections {
		dst, _ := site.Section(key)
		if err := deps.ContentStore.Get(ctx, key, dst); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return content.Site{}, err
		}
	}
	return site, nil
}
