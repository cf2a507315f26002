package web

import (
	"log/slog"
	"net/http"

	"storefront/internal/adapters/http/middleware"
	auditStore "storefront/internal/adapters/storage/audit"
	"storefront/internal/application/listutil"
	auditDomain "storefront/internal/domain/audit"
)

// recordAudit saves an activity log entry stamped with the request origin.
// A failed save is logged and never fails the request.
func recordAudit(r *http.Request, e auditDomain.Entry) {
	if stores.AuditStore == nil {
		return
	}
	e = e.WithRequest(middleware.ClientIP(r), r.UserAgent())
	if err := stores.AuditStore.Save(r.Context(), e); err != nil {
		slog.Error("audit_save_failed", "category", string(e.Category), "action", string(e.Action), "error", err.Error())
	}
}

// auditPage is the GET /api/admin/audit response body.
type auditPage struct {
	Entries []auditDomain.Entry `json:"entries"`
	listutil.PageInfo
}

// handleAdminAudit handles GET /api/admin/audit (admin).
// ?page and ?per_page select the page, ?category and ?actor narrow it.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if stores.AuditStore == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Activity log disabled")
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{}
	if c := listutil.ParseFilter(q, "category", auditDomain.IsCategory); c != "" {
		cat := auditDomain.Category(c)
		filter.Category = &cat
	}
	if a := q.Get("actor"); a != "" {
		filter.Actor = &a
	}

	ctx := r.Context()
	total, err := stores.AuditStore.Count(ctx, filter)
	if err != nil {
		internalError(w, err)
		return
	}
	info := listutil.NewPageInfo(listutil.ParsePageParams(q), total)
	entries, err := stores.AuditStore.List(ctx, filter, info.PerPage, info.Offset())
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []auditDomain.Entry{}
	}
	writeJSON(w, http.StatusOK, auditPage{Entries: entries, PageInfo: info})
}
