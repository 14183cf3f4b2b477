// Package mailer delivers plain text reports
package mailer

import (
	"context"
	"fmt"
	"strings"

	"callcrm/internal/platform/logger"

	"github.com/resendlabs/resend-go"
)

// Message is one plain text email
type Message struct {
	To      []string
	Subject string
	Text    string
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Resend sends through the Resend API
type Resend struct {
	client *resend.Client
	from   string
}

// NewResend builds a Resend mailer
func NewResend(apiKey, from string) *Resend {
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

// Send delivers m to all recipients in one request
func (r *Resend) Send(ctx context.Context, m Message) error {
	_, err := r.client.Emails.Send(&resend.SendEmailRequest{
		From:    r.from,
		To:      m.To,
		Subject: m.Subject,
		Text:    m.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: send %q: %w", m.Subject, err)
	}
	logger.C(ctx).Info().Int("recipients", len(m.To)).Msg("mailer: report sent")
	return nil
}

// Log writes messages to the log instead of sending them
type Log struct{}

// Send logs the message head
func (Log) Send(ctx context.Context, m Message) error {
	preview := m.Text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	logger.C(ctx).Info().
		Str("to", strings.Join(m.To, ", ")).
		Str("subject", m.Subject).
		Str("preview", preview).
		Msg("mailer: no api key, report not sent")
	return nil
}

// New returns a Resend mailer, or Log when apiKey is empty
func New(apiKey, from string) Mailer {
	if strings.TrimSpace(apiKey) == "" {
		return Log{}
	}
	return NewResend(apiKey, from)
}
