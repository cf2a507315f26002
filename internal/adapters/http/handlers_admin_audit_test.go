package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	auditStore "storefront/internal/adapters/storage/audit"
	auditDomain "storefront/internal/domain/audit"
)

type auditResponse struct {
	Entries    []auditDomain.Entry `json:"entries"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"perPage"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

func TestAdminAudit_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do("GET", "/api/admin/audit", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminAudit_RecordsAdminActivity(t *testing.T) {
	env := newTestEnv(t)
	env.do("POST", "/api/admin/login", map[string]string{"username": testAdminUser, "password": "wrong"})
	cookie := env.login(t)

	rec := env.do("POST", "/api/events", harvest, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body.String())
	}
	env.clock.Advance(time.Second)
	if rec := env.do("DELETE", "/api/events/1", nil, cookie); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}
	env.clock.Advance(time.Second)
	if rec := env.do("PUT", "/api/content/about", testAbout, cookie); rec.Code != http.StatusOK {
		t.Fatalf("put content: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do("GET", "/api/admin/audit", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit: got %d", rec.Code)
	}
	var page auditResponse
	decodeBody(t, rec, &page)
	if page.Total != 5 || len(page.Entries) != 5 {
		t.Fatalf("expected 5 entries, got total=%d len=%d", page.Total, len(page.Entries))
	}
	newest := page.Entries[0]
	if newest.Category != auditDomain.CategoryContent || newest.ResourceID != "about" || newest.Actor != testAdminUser {
		t.Errorf("unexpected newest entry %+v", newest)
	}
	if page.Entries[1].Action != auditDomain.ActionDelete || page.Entries[1].ResourceID != "1" {
		t.Errorf("expected event delete second, got %+v", page.Entries[1])
	}

	var failed int
	for _, e := range page.Entries {
		if e.Action == auditDomain.ActionLoginFailed {
			failed++
			if e.Severity != auditDomain.SeverityWarning {
				t.Errorf("failed login should be a warning, got %s", e.Severity)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected one failed login, got %d", failed)
	}
}

func TestAdminAudit_FilterAndPaging(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	for i := 0; i < 12; i++ {
		env.clock.Advance(time.Second)
		if rec := env.do("POST", "/api/events", harvest, cookie); rec.Code != http.StatusCreated {
			t.Fatalf("create: got %d", rec.Code)
		}
	}

	rec := env.do("GET", "/api/admin/audit?category=event&per_page=10&page=2", nil, cookie)
	var page auditResponse
	decodeBody(t, rec, &page)
	if page.Total != 12 || page.TotalPages != 2 || page.Page != 2 || len(page.Entries) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}

	// unknown categories are ignored rather than rejected
	rec = env.do("GET", "/api/admin/audit?category=member", nil, cookie)
	decodeBody(t, rec, &page)
	if page.Total != 13 {
		t.Errorf("expected all 13 entries, got %d", page.Total)
	}

	rec = env.do("GET", "/api/admin/audit?category=auth", nil, cookie)
	decodeBody(t, rec, &page)
	if page.Total != 1 || page.Entries[0].Action != auditDomain.ActionLogin {
		t.Errorf("expected the login only, got %+v", page.Entries)
	}
}

func TestAdminAudit_LogoutRecorded(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	env.clock.Advance(time.Second)
	if rec := env.do("POST", "/api/admin/logout", nil, cookie); rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d", rec.Code)
	}
	// a second logout with the dead cookie records nothing
	env.do("POST", "/api/admin/logout", nil, cookie)

	cat := auditDomain.CategoryAuth
	n, err := env.stores.AuditStore.Count(context.Background(), auditStore.Filter{Category: &cat})
	if err != nil || n != 2 {
		t.Errorf("expected login and one logout, got %d (%v)", n, err)
	}
}

func TestAdminAudit_PublicReadsNotRecorded(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)
	if rec := env.do("PUT", "/api/content/about", testAbout, cookie); rec.Code != http.StatusOK {
		t.Fatalf("put content: got %d", rec.Code)
	}

	total := func() int {
		var page auditResponse
		decodeBody(t, env.do("GET", "/api/admin/audit", nil, cookie), &page)
		return page.Total
	}
	before := total()
	for i := 0; i < 3; i++ {
		if rec := env.do("GET", "/api/content/about", nil); rec.Code != http.StatusOK {
			t.Fatalf("get content: got %d", rec.Code)
		}
	}
	if after := total(); after != before {
		t.Errorf("reads changed the activity log: %d entries, want %d", after, before)
	}
}
