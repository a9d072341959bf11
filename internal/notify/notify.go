// Package notify delivers contact notifications by email. Delivery is
// best-effort: failures are logged and never reach the HTTP client.
package notify

import (
	"context"
	"fmt"

	"github.com/starford/folio/internal/models"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Notifier delivers a single message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// ComposeContact builds the notification for a newly stored record.
func ComposeContact(rec models.ContactRecord, from, to string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("New contact from %s", rec.Name),
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nMessage:\n%s\n\nReceived: %s",
			rec.Name, rec.Email, rec.Message, rec.CreatedAt),
	}
}
