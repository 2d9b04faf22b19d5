// Package sanitizer strips markup from free text before it is stored or printed.
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer reduces input to plain text. Safe for concurrent use.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer creates a sanitizer that removes every tag.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes tags and returns the remaining text with entities decoded,
// so "R&D" survives unchanged while "<b>Plan</b>" becomes "Plan".
func (s *TextSanitizer) Clean(text string) string {
	if !strings.ContainsAny(text, "<>&") {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
