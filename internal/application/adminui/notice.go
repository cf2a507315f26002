package adminui

import (
	"sync"
	"time"

	"storefront/internal/domain/validation"
)

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeSuccess    NoticeKind = "success"
	NoticeValidation NoticeKind = "validation"
	NoticeError      NoticeKind = "error"
)

// Notice is one transient notification shown to the admin.
type Notice struct {
	Kind    NoticeKind
	Message string
	Fields  validation.Errors
	At      time.Time
}

// Notices is an append-only notification log. Every save, delete and load outcome
// other than a successful load adds one entry.
type Notices struct {
	mu    sync.Mutex
	items []Notice
	// Hook, when set, is called with each new notice.
	Hook func(Notice)
}

// All returns every notice so far.
func (n *Notices) All() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.items...)
}

// Last returns the newest notice.
func (n *Notices) Last() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return Notice{}, false
	}
	return n.items[len(n.items)-1], true
}

func (n *Notices) add(no Notice) {
	no.At = time.Now()
	n.mu.Lock()
	n.items = append(n.items, no)
	hook := n.Hook
	n.mu.Unlock()
	if hook != nil {
		hook(no)
	}
}

func (n *Notices) success(msg string) {
	n.add(Notice{Kind: NoticeSuccess, Message: msg})
}

func (n *Notices) invalid(err error) {
	n.add(Notice{Kind: NoticeValidation, Message: "Please fix the highlighted fields", Fields: fieldErrors(err)})
}

func (n *Notices) failure(msg string, err error) {
	n.add(Notice{Kind: NoticeError, Message: msg + ": " + err.Error()})
}
