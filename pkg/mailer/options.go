package mailer

import (
	"log/slog"

	"github.com/yuin/goldmark"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithSender replaces the SES sender built from the credentials.
func WithSender(s Sender) Option {
	return func(a *Adapter) {
		a.sender = s
	}
}

// WithLoader sets where template files are read from. Default: FileLoader.
func WithLoader(l Loader) Option {
	return func(a *Adapter) {
		a.loader = l
	}
}

// WithLogger sets the logger for send failures and dropped callback output.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithRenderer shares a Renderer (and its compile cache) between adapters.
func WithRenderer(r *Renderer) Option {
	return func(a *Adapter) {
		a.renderer = r
	}
}

// WithMarkdown overrides the goldmark processor used for PathMarkdown templates.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(a *Adapter) {
		a.markdown = md
	}
}

// WithHTMLSanitizer filters string variables before they are interpolated
// into HTML bodies, e.g. sanitizer.StripHTML. Plain-text bodies are unaffected.
func WithHTMLSanitizer(fn func(string) string) Option {
	return func(a *Adapter) {
		a.sanitize = fn
	}
}
