package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	inlinePolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Inline formatting only: values land inside an existing email layout.
		inlinePolicy = bluemonday.NewPolicy()
		inlinePolicy.AllowStandardURLs()
		inlinePolicy.AllowElements("strong", "b", "em", "i", "br", "code")
		inlinePolicy.AllowAttrs("href").OnElements("a")
		inlinePolicy.RequireNoFollowOnLinks(true)
	})
}

// StripHTML removes all markup and escapes what is left, so the result is
// safe to place anywhere in an HTML document.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// InlineHTML keeps basic inline formatting and links and drops everything else.
func InlineHTML(s string) string {
	initPolicies()
	return inlinePolicy.Sanitize(s)
}

// Policy adapts a custom bluemonday policy to a string filter.
// A nil policy yields the identity function.
func Policy(p *bluemonday.Policy) func(string) string {
	if p == nil {
		return func(s string) string { return s }
	}
	return p.Sanitize
}
