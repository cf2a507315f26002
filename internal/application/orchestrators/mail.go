package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"storefront/internal/adapters/email"
	"storefront/internal/domain/outbox"
)

var contactEmailTmpl = template.Must(template.New("contact").Parse(`<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote via the website contact form:</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<blockquote style="white-space:pre-wrap">{{.Message}}</blockquote>
<p style="color:#888">Reply to this email to answer the customer directly.</p>`))

var welcomeEmailTmpl = template.Must(template.New("welcome").Parse(`<h2>Thanks for subscribing to {{.Store}}!</h2>
<p>You'll hear from us about weekly specials, new arrivals and in-store events.</p>
<p>See you at the store,<br>The {{.Store}} team</p>`))

// MailConfig names the store and where contact messages go.
type MailConfig struct {
	StoreName string
	Inbox     string // store mailbox receiving contact form messages
	ReplyTo   string // Reply-To on mail sent to customers
}

// ContactEmailExecutor forwards a contact form message to the store inbox.
type ContactEmailExecutor struct {
	Sender email.Sender
	Config MailConfig
}

// Execute sends the forwarding mail with Reply-To set to the customer.
// PRE: payload is valid JSON matching ContactEmailPayload
// POST: returns the provider message id
// INVARIANT: outbox entry status managed by caller
func (e *ContactEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p ContactEmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	var body bytes.Buffer
	if err := contactEmailTmpl.Execute(&body, p); err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	r, err := e.Sender.Send(ctx, email.Message{
		To:      []string{e.Config.Inbox},
		ReplyTo: p.Email,
		Subject: "[Website] " + p.Subject,
		HTML:    body.String(),
		Text:    fmt.Sprintf("%s <%s> wrote:\n\n%s", p.Name, p.Email, p.Message),
	})
	if err != nil {
		return "", err
	}
	return r.MessageID, nil
}

// NewsletterWelcomeExecutor greets a new newsletter subscriber.
type NewsletterWelcomeExecutor struct {
	Sender email.Sender
	Config MailConfig
}

// Execute sends the welcome mail.
// PRE: payload is valid JSON matching NewsletterWelcomePayload
// POST: returns the provider message id
func (e *NewsletterWelcomeExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p NewsletterWelcomePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	var body bytes.Buffer
	if err := welcomeEmailTmpl.Execute(&body, map[string]string{"Store": e.Config.StoreName}); err != nil {
		return "", fmt.Errorf("render welcome email: %w", err)
	}
	r, err := e.Sender.Send(ctx, email.Message{
		To:      []string{p.Email},
		ReplyTo: e.Config.ReplyTo,
		Subject: "Welcome to the " + e.Config.StoreName + " newsletter",
		HTML:    body.String(),
	})
	if err != nil {
		return "", err
	}
	return r.MessageID, nil
}

// MailExecutors returns the executor table for every mail action type.
func MailExecutors(sender email.Sender, cfg MailConfig) map[string]ActionExecutor {
	return map[string]ActionExecutor{
		outbox.ActionTypeContactEmail:      &ContactEmailExecutor{Sender: sender, Config: cfg},
		outbox.ActionTypeNewsletterWelcome: &NewsletterWelcomeExecutor{Sender: sender, Config: cfg},
	}
}
