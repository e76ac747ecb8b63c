package extract

import (
	"regexp"
	"strings"
	"time"
)

// textRule is one heuristic that derives a single field from free text.
// Rules are tried in order; the first non-empty result wins. Adding or
// reordering a heuristic is a change to the rules slice, not to control flow.
type textRule struct {
	field string
	apply func(text string) string
}

var (
	locationPattern = regexp.MustCompile(`(?i:\bin\s+)([^,.\n]+(?:,\s*[A-Z]{2}\b)?)`)
	jobTypePattern  = regexp.MustCompile(`(?i)(Full[- ]Time|Part[- ]Time|Contract|Remote|Hybrid)`)
	salaryPattern   = regexp.MustCompile(`\$[\d,]+ *[-–] *\$[\d,]+|\$[\d,]+ *\+`)
	datePattern     = regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},\s+\d{4}`)
)

// snippetRules are the text heuristics applied to the snippet first, then
// the title, per field.
var snippetRules = []textRule{
	{field: "location", apply: func(text string) string {
		m := locationPattern.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[1])
	}},
	{field: "jobType", apply: func(text string) string {
		m := jobTypePattern.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[1])
	}},
	{field: "salary", apply: func(text string) string {
		return salaryPattern.FindString(text)
	}},
}

var dateLayouts = []string{"Jan 2, 2006", "January 2, 2006"}

// dateFromText scans free text for a month-name + day + year token.
// Returns the zero time when nothing parses.
func dateFromText(text string) time.Time {
	token := datePattern.FindString(text)
	if token == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseTimestamp handles the date formats structured metadata uses.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// domainNoise are tokens stripped from a display domain before it is turned
// into a company name: platform hosts, environment codes, common subdomains.
var domainNoise = []string{"www", "wd3", "wd5", "careers", "jobs", "myworkdayjobs", "myworkday"}

// companyFromDomain derives a readable company name from a search result's
// display domain, e.g. "acme-corp.wd5.myworkdayjobs.com" -> "Acme Corp".
// The first label that is not pure noise wins; the TLD never counts.
func companyFromDomain(displayLink string) string {
	labels := strings.Split(displayLink, ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}

	for _, label := range labels {
		for _, noise := range domainNoise {
			label = strings.ReplaceAll(label, noise, "")
		}
		label = strings.Trim(label, "-")
		if label == "" {
			continue
		}

		words := strings.Split(label, "-")
		for i, w := range words {
			if w == "" {
				continue
			}
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.TrimSpace(strings.Join(words, " "))
	}
	return ""
}
