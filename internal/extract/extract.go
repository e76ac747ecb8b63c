// Package extract derives structured job fields from unstructured search
// results and scraped detail pages. Extraction is best effort: a field that
// cannot be derived stays at its zero value, and no failure here ever aborts
// a posting.
package extract

import (
	"strings"
	"time"

	"github.com/jobradar/go-jobboard/internal/domain"
)

// FromSearchItem extracts fields from a single search result. Structured
// page metadata wins over text heuristics, which win over the display-domain
// fallback for the company name.
func FromSearchItem(item domain.SearchItem) domain.Fields {
	fields := domain.Fields{
		Title:   item.Title,
		Snippet: item.Snippet,
	}

	if item.PageMap.OrganizationName != "" {
		fields.CompanyName = item.PageMap.OrganizationName
	} else {
		fields.CompanyName = companyFromDomain(item.DisplayLink)
	}

	for _, r := range snippetRules {
		value := r.apply(item.Snippet)
		if value == "" {
			value = r.apply(item.Title)
		}
		if value == "" {
			continue
		}
		switch r.field {
		case "location":
			fields.Location = value
		case "jobType":
			fields.JobType = value
		case "salary":
			fields.SalaryRange = value
		}
	}

	fields.PublishedDate = publishedDate(item)

	if IsPlatformURL(item.Link) {
		fields.PlatformURL = item.Link
	}

	return fields
}

// publishedDate resolves the posting date in precedence order: article
// metadata, job-posting structured data, then a date token in the snippet.
func publishedDate(item domain.SearchItem) time.Time {
	if d := parseTimestamp(item.PageMap.PublishedTime); !d.IsZero() {
		return d
	}
	if d := parseTimestamp(item.PageMap.DatePosted); !d.IsZero() {
		return d
	}
	return dateFromText(item.Snippet)
}

// IsPlatformURL reports whether the link points at the known job-hosting
// platform whose pages embed structured posting data.
func IsPlatformURL(url string) bool {
	return strings.Contains(url, "myworkdayjobs.com") || strings.Contains(url, "myworkday.com")
}
