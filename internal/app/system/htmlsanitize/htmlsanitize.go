// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe markup from user-authored HTML before
// it is stored. Blog post bodies are the only rich-text input in the
// system; everything else is treated as plain text.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// policy allows common formatting (paragraphs, emphasis, lists, headings,
// tables, images, safe links) and removes scripts, event handlers, and
// javascript: URLs.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with all disallowed markup removed. Safe to call on
// empty or plain-text strings.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
