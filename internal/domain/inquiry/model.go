package inquiry

import (
	"strings"
	"time"

	"storefront/internal/domain/validation"
)

// Max length constants for public form fields.
const (
	MaxNameLength    = 200
	MaxEmailLength   = 254
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims surrounding whitespace and lower-cases the email.
func (m ContactMessage) Normalize() ContactMessage {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	return m
}

// Validate checks that every field is present.
// PRE: m has been normalized
// POST: returns nil if valid, validation.Errors otherwise
func (m ContactMessage) Validate() error {
	var errs validation.Errors
	errs.Required("name", m.Name)
	errs.MaxLength("name", m.Name, MaxNameLength)
	if errs.Required("email", m.Email) && !LooksLikeEmail(m.Email) {
		errs.Add("email", "email must be an email address")
	}
	errs.MaxLength("email", m.Email, MaxEmailLength)
	errs.Required("subject", m.Subject)
	errs.MaxLength("subject", m.Subject, MaxSubjectLength)
	errs.Required("message", m.Message)
	errs.MaxLength("message", m.Message, MaxMessageLength)
	return errs.Err()
}

// Subscription is a newsletter signup.
// INVARIANT: at most one subscription exists per email
type Subscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize lower-cases and trims the email.
func (s Subscription) Normalize() Subscription {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	return s
}

// Validate checks the email.
func (s Subscription) Validate() error {
	var errs validation.Errors
	if errs.Required("email", s.Email) && !LooksLikeEmail(s.Email) {
		errs.Add("email", "email must be an email address")
	}
	errs.MaxLength("email", s.Email, MaxEmailLength)
	return errs.Err()
}

// LooksLikeEmail is a shallow local@domain check.
func LooksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}
