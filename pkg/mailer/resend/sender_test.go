package resend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

func TestSender_BuildRequest(t *testing.T) {
	t.Parallel()

	email := &mailer.Email{
		From:    "App <noreply@app.com>",
		Subject: "Confirm your account",
		To:      []string{"bob@example.com"},
		Body:    mailer.Body{Text: "Confirm: https://x/c", HTML: "<p>Confirm</p>"},
	}

	t.Run("keeps email sender", func(t *testing.T) {
		t.Parallel()

		s := New(Config{APIKey: "re_test", SenderEmail: "fallback@app.com", ReplyTo: "support@app.com"})
		req := s.buildRequest(email)

		require.Equal(t, "App <noreply@app.com>", req.From)
		require.Equal(t, []string{"bob@example.com"}, req.To)
		require.Equal(t, "Confirm your account", req.Subject)
		require.Equal(t, "Confirm: https://x/c", req.Text)
		require.Equal(t, "<p>Confirm</p>", req.Html)
		require.Equal(t, "support@app.com", req.ReplyTo)
	})

	t.Run("falls back to configured sender", func(t *testing.T) {
		t.Parallel()

		s := New(Config{APIKey: "re_test", SenderEmail: "fallback@app.com", SenderName: "App"})
		req := s.buildRequest(&mailer.Email{To: []string{"bob@example.com"}, Body: mailer.Body{Text: "hi"}})

		require.Equal(t, "App <fallback@app.com>", req.From)
		require.Empty(t, req.Html)
		require.Empty(t, req.ReplyTo)
	})

	t.Run("bare fallback address", func(t *testing.T) {
		t.Parallel()

		s := New(Config{APIKey: "re_test", SenderEmail: "fallback@app.com"})
		req := s.buildRequest(&mailer.Email{To: []string{"bob@example.com"}})

		require.Equal(t, "fallback@app.com", req.From)
	})
}
