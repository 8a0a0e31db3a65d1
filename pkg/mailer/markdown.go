package mailer

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// NewMarkdown returns the goldmark processor used for markdown HTML bodies.
// Raw HTML in the source is kept; template authors are trusted.
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Table,
			NewButtonExtension(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			html.WithHardWraps(),
		),
	)
}

// markdownToHTML converts rendered markdown to an HTML fragment.
func markdownToHTML(md goldmark.Markdown, source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%w: failed to convert markdown: %w", ErrRenderFailed, err)
	}
	return buf.String(), nil
}
