package web

import "net/http"

// registerRoutes maps every route. Mutating event and content routes and the
// admin listings sit behind the admin gate.
func registerRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler { return gate.RequireAdmin(h) }

	// Public pages and forms
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("POST /contact", handleContactForm)
	mux.HandleFunc("POST /newsletter", handleNewsletterForm)
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Events
	mux.HandleFunc("GET /api/events", handleListEvents)
	mux.HandleFunc("GET /api/events.ics", handleEventsFeed)
	mux.HandleFunc("GET /api/events/{id}", handleGetEvent)
	mux.Handle("POST /api/events", admin(handleCreateEvent))
	mux.Handle("PUT /api/events/{id}", admin(handleUpdateEvent))
	mux.Handle("DELETE /api/events/{id}", admin(handleDeleteEvent))

	// Content sections
	mux.HandleFunc("GET /api/content/{section}", handleGetContent)
	mux.Handle("PUT /api/content/{section}", admin(handlePutContent))

	// Inquiries
	mux.HandleFunc("POST /api/contact", handleContact)
	mux.HandleFunc("POST /api/newsletter", handleNewsletter)

	// Admin session
	mux.HandleFunc("POST /api/admin/login", handleAdminLogin)
	mux.HandleFunc("POST /api/admin/logout", handleAdminLogout)
	mux.HandleFunc("GET /api/admin/status", handleAdminStatus)

	// Admin listings and tools
	mux.Handle("GET /api/admin/messages", admin(handleAdminMessages))
	mux.Handle("GET /api/admin/subscribers", admin(handleAdminSubscribers))
	mux.Handle("GET /api/admin/perf", admin(handleAdminPerf))
	mux.Handle("GET /api/admin/audit", admin(handleAdminAudit))
	mux.Handle("GET /api/admin/outbox", admin(handleAdminOutboxList))
	mux.Handle("POST /api/admin/outbox/{id}/retry", admin(handleAdminOutboxRetry))
	mux.Handle("POST /api/admin/outbox/{id}/abandon", admin(handleAdminOutboxAbandon))
}
