package mailer

import (
	"context"

	"github.com/dmitrymomot/sesadapter/pkg/mailer/ses"
)

// Sender defines the minimal interface that email providers must implement.
type Sender interface {
	// Send delivers a rendered email and returns the provider's receipt.
	Send(ctx context.Context, email *Email) (*Receipt, error)
}

// MailAdapter is the contract a host framework expects from a mail plugin.
type MailAdapter interface {
	SendPasswordResetEmail(ctx context.Context, params LinkParams) (*Receipt, error)
	SendVerificationEmail(ctx context.Context, params LinkParams) (*Receipt, error)
}

// SESSender adapts an SES client to Sender.
type SESSender struct {
	client *ses.Client
}

// NewSESSender wraps client.
func NewSESSender(client *ses.Client) *SESSender {
	return &SESSender{client: client}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, email *Email) (*Receipt, error) {
	res, err := s.client.Send(ctx, &ses.Message{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Body: ses.Body{
			Text: email.Body.Text,
			HTML: email.Body.HTML,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{MessageID: res.MessageID}, nil
}
