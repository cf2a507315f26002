package web

import (
	"net/http"
	"strconv"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/adapters/ical"
	"storefront/internal/application/orchestrators"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/content"
	"storefront/internal/domain/event"
)

const msgEventNotFound = "Event not found"

// eventID parses the {id} path value. Ids that do not parse are answered as not found.
func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := event.ParseID(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, msgEventNotFound)
		return 0, false
	}
	return id, true
}

// actor returns the admin username attached by the gate, for logs and the activity log.
func actor(r *http.Request) string {
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		return s.Username
	}
	return ""
}

func auditEvent(r *http.Request, action audit.Action, id int64) audit.Entry {
	return audit.New(actor(r), audit.CategoryEvent, action, timeNow()).
		WithResource("event", strconv.FormatInt(id, 10))
}

// handleListEvents handles GET /api/events
func handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := stores.EventStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleGetEvent handles GET /api/events/{id}
func handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := stores.EventStore.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, msgEventNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleCreateEvent handles POST /api/events (admin)
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var d event.Draft
	if !decodeOrReject(w, r, &d) {
		return
	}
	e, err := orchestrators.ExecuteCreateEvent(r.Context(), orchestrators.CreateEventInput{
		Draft: d,
		Actor: actor(r),
	}, orchestrators.CreateEventDeps{
		EventStore: stores.EventStore,
		Now:        timeNow,
	})
	if err != nil {
		writeError(w, err, msgEventNotFound)
		return
	}
	recordAudit(r, auditEvent(r, audit.ActionCreate, e.ID).WithDescription(e.Title))
	writeJSON(w, http.StatusCreated, e)
}

// handleUpdateEvent handles PUT /api/events/{id} (admin). The body replaces every mutable field.
func handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var d event.Draft
	if !decodeOrReject(w, r, &d) {
		return
	}
	e, err := orchestrators.ExecuteUpdateEvent(r.Context(), orchestrators.UpdateEventInput{
		ID:    id,
		Draft: d,
		Actor: actor(r),
	}, orchestrators.UpdateEventDeps{EventStore: stores.EventStore})
	if err != nil {
		writeError(w, err, msgEventNotFound)
		return
	}
	recordAudit(r, auditEvent(r, audit.ActionUpdate, e.ID).WithDescription(e.Title))
	writeJSON(w, http.StatusOK, e)
}

// handleDeleteEvent handles DELETE /api/events/{id} (admin)
func handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteDeleteEvent(r.Context(), orchestrators.DeleteEventInput{
		ID:    id,
		Actor: actor(r),
	}, orchestrators.DeleteEventDeps{EventStore: stores.EventStore})
	if err != nil {
		writeError(w, err, msgEventNotFound)
		return
	}
	recordAudit(r, auditEvent(r, audit.ActionDelete, id))
	w.WriteHeader(http.StatusNoContent)
}

// handleEventsFeed handles GET /api/events.ics
func handleEventsFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := stores.EventStore.List(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	name := "Store events"
	var info content.StoreInfo
	if err := stores.ContentStore.Get(ctx, content.SectionStore, &info); err == nil && info.Name != "" {
		name = info.Name + " events"
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.Write([]byte(ical.BuildFeed(name, events, timeNow(), storeTZ)))
}
