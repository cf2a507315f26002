// Package email delivers store mail through an external provider.
package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // defaults to the sender's configured address
	ReplyTo string // e.g. the customer who filled in the contact form
	Subject string
	HTML    string
	Text    string
}

// Receipt is the provider's acknowledgement of a send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender sends email.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
