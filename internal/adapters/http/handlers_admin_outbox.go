package web

import (
	"errors"
	"net/http"

	"storefront/internal/adapters/storage"
	"storefront/internal/application/orchestrators"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/outbox"
)

// handleAdminOutboxList handles GET /api/admin/outbox (admin).
// ?status=failed (default) lists entries that exhausted their attempts; ?status=pending lists the queue;
// ?status=counts returns the number of entries per status.
func handleAdminOutboxList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := listLimit(r, 50, 100)

	var entries []outbox.Entry
	var err error
	switch r.URL.Query().Get("status") {
	case "", outbox.StatusFailed:
		entries, err = stores.OutboxStore.ListFailed(ctx, limit)
	case outbox.StatusPending:
		entries, err = stores.OutboxStore.ListPending(ctx, limit)
	case "counts":
		counts, err := stores.OutboxStore.CountByStatus(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, counts)
		return
	default:
		writeMessage(w, http.StatusBadRequest, "status must be failed, pending or counts")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAdminOutboxRetry handles POST /api/admin/outbox/{id}/retry (admin)
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Outbox processing disabled")
		return
	}
	entry, err := outboxProcessor.ProcessSingle(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Outbox entry not found")
		return
	}
	if errors.Is(err, orchestrators.ErrNotRetryable) {
		writeMessage(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	recordAudit(r, auditOutbox(r, audit.ActionRetry, entry.ID).WithDescription(entry.Status))
	writeJSON(w, http.StatusOK, entry)
}

// handleAdminOutboxAbandon handles POST /api/admin/outbox/{id}/abandon (admin)
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if outboxProcessor == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Outbox processing disabled")
		return
	}
	err := outboxProcessor.AbandonEntry(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Outbox entry not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	recordAudit(r, auditOutbox(r, audit.ActionAbandon, r.PathValue("id")).WithSeverity(audit.SeverityWarning))
	writeJSON(w, http.StatusOK, map[string]string{"status": outbox.StatusAbandoned})
}

func auditOutbox(r *http.Request, action audit.Action, id string) audit.Entry {
	return audit.New(actor(r), audit.CategoryOutbox, action, timeNow()).WithResource("outbox", id)
}
