// Package audit models the admin activity log: who signed in, and which events, content sections
// and outbox entries an admin changed.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit entries by the area they touch.
type Category string

const (
	CategoryAuth    Category = "auth"
	CategoryEvent   Category = "event"
	CategoryContent Category = "content"
	CategoryOutbox  Category = "outbox"
)

// Categories lists every category, in display order.
var Categories = []Category{CategoryAuth, CategoryEvent, CategoryContent, CategoryOutbox}

// IsCategory reports whether s names a known category.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Action is what happened.
type Action string

const (
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
	ActionLogout      Action = "logout"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRetry       Action = "retry"
	ActionAbandon     Action = "abandon"
)

// Severity flags entries worth a second look.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Entry is one audit log record.
// INVARIANT: ID and At are set by New and never change.
type Entry struct {
	ID           string    `json:"id"`
	At           time.Time `json:"at"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	Actor        string    `json:"actor"`
	ResourceType string    `json:"resourceType,omitempty"`
	ResourceID   string    `json:"resourceId,omitempty"`
	Description  string    `json:"description,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// New creates an info-level entry.
// PRE: actor may be empty for anonymous failures
func New(actor string, category Category, action Action, now time.Time) Entry {
	return Entry{
		ID:       uuid.New().String(),
		At:       now.UTC(),
		Category: category,
		Action:   action,
		Severity: SeverityInfo,
		Actor:    actor,
	}
}

// WithSeverity sets the severity.
func (e Entry) WithSeverity(s Severity) Entry {
	e.Severity = s
	return e
}

// WithResource names the record the action touched.
func (e Entry) WithResource(resourceType, resourceID string) Entry {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets a human-readable summary.
func (e Entry) WithDescription(desc string) Entry {
	e.Description = desc
	return e
}

// WithRequest records where the request came from.
func (e Entry) WithRequest(ipAddress, userAgent string) Entry {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}
