package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	resp, err := s.client.Emails.SendWithContext(ctx, s.buildRequest(email))
	if err != nil {
		return nil, fmt.Errorf("resend: failed to send email: %w", err)
	}

	return &mailer.Receipt{MessageID: resp.Id}, nil
}

// buildRequest maps a rendered email onto Resend's request.
// The configured sender is used only when the email carries none.
func (s *Sender) buildRequest(email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = s.config.SenderEmail
		if s.config.SenderName != "" {
			from = fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
		}
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Body.Text,
	}
	if email.Body.HTML != "" {
		req.Html = email.Body.HTML
	}
	if s.config.ReplyTo != "" {
		req.ReplyTo = s.config.ReplyTo
	}
	return req
}

var _ mailer.Sender = (*Sender)(nil)
