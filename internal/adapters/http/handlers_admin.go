package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/adapters/http/middleware"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/inquiry"
)

// handleAdminLogin handles POST /api/admin/login
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeOrReject(w, r, &input) {
		return
	}
	sess, err := gate.Login(r.Context(), input.Username, input.Password)
	if errors.Is(err, middleware.ErrInvalidCredentials) {
		recordAudit(r, audit.New(input.Username, audit.CategoryAuth, audit.ActionLoginFailed, timeNow()).
			WithSeverity(audit.SeverityWarning))
		writeMessage(w, http.StatusUnauthorized, middleware.Message(err))
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	recordAudit(r, audit.New(sess.Username, audit.CategoryAuth, audit.ActionLogin, timeNow()))
	gate.SetCookie(w, sess)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Admin login successful", "username": sess.Username})
}

// handleAdminLogout handles POST /api/admin/logout. Logging out twice is not an error.
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	sess, checkErr := gate.Check(r.Context(), token)
	if err := gate.Logout(r.Context(), token); err != nil {
		internalError(w, err)
		return
	}
	if checkErr == nil {
		recordAudit(r, audit.New(sess.Username, audit.CategoryAuth, audit.ActionLogout, timeNow()))
	}
	gate.ClearCookie(w)
	writeMessage(w, http.StatusOK, "Admin logout successful")
}

// handleAdminStatus handles GET /api/admin/status
func handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	st, err := gate.Status(r.Context(), middleware.TokenFromRequest(r))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// listLimit reads ?limit=, bounded to [1, max].
func listLimit(r *http.Request, def, max int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= max {
		return n
	}
	return def
}

// handleAdminMessages handles GET /api/admin/messages (admin)
func handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := stores.InquiryStore.ListContactMessages(r.Context(), listLimit(r, 50, 200))
	if err != nil {
		internalError(w, err)
		return
	}
	if msgs == nil {
		msgs = []inquiry.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// handleAdminSubscribers handles GET /api/admin/subscribers (admin)
func handleAdminSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := stores.InquiryStore.ListSubscriptions(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if subs == nil {
		subs = []inquiry.Subscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// handleAdminPerf handles GET /api/admin/perf (admin).
// ?minutes= selects the window (default 60), ?top= the number of slowest paths (default 10).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Performance collection disabled")
		return
	}
	minutes := 60
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 && n <= 24*60 {
		minutes = n
	}
	top := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 && n <= 50 {
		top = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}
