package outbox

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer delivers a single notification email
type Mailer interface {
	Send(ctx context.Context, payload EmailPayload) error
}

// ResendMailer delivers email through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a Mailer backed by Resend
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers one email
func (m *ResendMailer) Send(ctx context.Context, payload EmailPayload) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{payload.To},
		Subject: payload.Subject,
		Html:    payload.HTML,
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", payload.To, err)
	}
	return nil
}
