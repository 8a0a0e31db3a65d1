package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

// printSender writes rendered emails as YAML documents instead of sending.
// Each document is closed with "..." so trailing output does not merge into it.
type printSender struct {
	out io.Writer
	mu  sync.Mutex
}

type printedEmail struct {
	MessageID string   `yaml:"messageId"`
	From      string   `yaml:"from"`
	To        []string `yaml:"to"`
	Subject   string   `yaml:"subject"`
	Text      string   `yaml:"text"`
	HTML      string   `yaml:"html,omitempty"`
}

func (s *printSender) Send(ctx context.Context, email *mailer.Email) (*mailer.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := printedEmail{
		MessageID: "dry-run-" + uuid.NewString(),
		From:      email.From,
		To:        email.To,
		Subject:   email.Subject,
		Text:      email.Body.Text,
		HTML:      email.Body.HTML,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.out, "---\n%s...\n", data); err != nil {
		return nil, fmt.Errorf("dry run: %w", err)
	}

	return &mailer.Receipt{MessageID: doc.MessageID}, nil
}

var _ mailer.Sender = (*printSender)(nil)
