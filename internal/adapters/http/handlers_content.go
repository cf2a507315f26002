package web

import (
	"errors"
	"net/http"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/application/orchestrators"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/content"
)

const msgSectionNotFound = "Content section not found"

// sectionTarget returns a decode target for the {section} path value, answering 404 for unknown keys.
func sectionTarget(w http.ResponseWriter, r *http.Request) (string, any, bool) {
	key := r.PathValue("section")
	v, err := content.NewSection(key)
	if err != nil {
		writeMessage(w, http.StatusNotFound, msgSectionNotFound)
		return "", nil, false
	}
	return key, v, true
}

// handleGetContent handles GET /api/content/{section}
func handleGetContent(w http.ResponseWriter, r *http.Request) {
	key, v, ok := sectionTarget(w, r)
	if !ok {
		return
	}
	if err := stores.ContentStore.Get(r.Context(), key, v); err != nil {
		writeError(w, err, msgSectionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handlePutContent handles PUT /api/content/{section} (admin). The body fully replaces the section.
func handlePutContent(w http.ResponseWriter, r *http.Request) {
	key, v, ok := sectionTarget(w, r)
	if !ok {
		return
	}
	if !decodeOrReject(w, r, v) {
		return
	}
	s, _ := middleware.SessionFromContext(r.Context())
	err := orchestrators.ExecuteSaveContent(r.Context(), orchestrators.SaveContentInput{
		Section: key,
		Value:   v,
		Actor:   s.Username,
	}, orchestrators.SaveContentDeps{
		ContentStore: stores.ContentStore,
		Now:          timeNow,
	})
	if errors.Is(err, content.ErrUnknownSection) {
		writeMessage(w, http.StatusNotFound, msgSectionNotFound)
		return
	}
	if err != nil {
		writeError(w, err, msgSectionNotFound)
		return
	}
	recordAudit(r, audit.New(s.Username, audit.CategoryContent, audit.ActionUpdate, timeNow()).WithResource("content", key))
	writeJSON(w, http.StatusOK, v)
}
