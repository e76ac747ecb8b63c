// Package cleaner strips HTML from scraped descriptions before they are
// persisted and shown in listings.
package cleaner

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Cleaner sanitizes scraped text using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
}

// New creates a cleaner that strips ALL HTML
func New() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// CleanToText removes all HTML and normalizes whitespace
func (c *Cleaner) CleanToText(html string) string {
	text := c.policy.Sanitize(html)

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
