package eventclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/application/listutil"
	"storefront/internal/domain/audit"
)

// AuditPage is one page of the admin activity log.
type AuditPage struct {
	Entries []audit.Entry `json:"entries"`
	listutil.PageInfo
}

// AuditQuery selects a page of the activity log. Zero values use the server defaults.
type AuditQuery struct {
	Category audit.Category
	Actor    string
	Page     int
	PerPage  int
}

// AuditLog fetches a page of the activity log, newest first. Requires an admin session.
func (c *Client) AuditLog(ctx context.Context, q AuditQuery) (AuditPage, error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	if q.Actor != "" {
		v.Set("actor", q.Actor)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	path := "/api/admin/audit"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var page AuditPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}
