package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jobradar/go-jobboard/internal/domain"
)

// DetailFetcher fetches a posting's detail page from the job-hosting
// platform and extracts the structured data it embeds.
type DetailFetcher struct {
	collector *colly.Collector
}

// NewDetailFetcher creates a fetcher with a configured collector.
func NewDetailFetcher(userAgent string, timeout time.Duration, requestDelay time.Duration) *DetailFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	if requestDelay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      requestDelay,
		})
	}
	return &DetailFetcher{collector: c}
}

// Fetch retrieves the page at url and extracts fields from it. An error is
// returned only when the page cannot be fetched at all; a page that yields
// no structured data gives empty fields and nil error.
func (f *DetailFetcher) Fetch(url string) (domain.Fields, error) {
	var (
		fields   domain.Fields
		fetchErr error
	)

	collector := f.collector.Clone()

	collector.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("parse html: %w", err)
			return
		}
		fields = parseDetail(doc)
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch detail page: %w (status: %d)", err, r.StatusCode)
	})

	if err := collector.Visit(url); err != nil {
		return domain.Fields{}, fmt.Errorf("visit url: %w", err)
	}
	collector.Wait()

	if fetchErr != nil {
		return domain.Fields{}, fetchErr
	}

	fields.PlatformURL = url
	return fields, nil
}

// jobPostingLD mirrors the schema.org JobPosting JSON-LD block platform
// pages embed.
type jobPostingLD struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	EmploymentType     string `json:"employmentType"`
	DatePosted         string `json:"datePosted"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation struct {
		Address struct {
			AddressLocality string `json:"addressLocality"`
		} `json:"address"`
	} `json:"jobLocation"`
	Identifier struct {
		Value string `json:"value"`
	} `json:"identifier"`
}

// parseDetail extracts fields from a detail page document. JSON-LD wins;
// og: meta tags fill whatever it left empty. A malformed JSON-LD block is
// treated as absent.
func parseDetail(doc *goquery.Document) domain.Fields {
	var fields domain.Fields

	if raw := strings.TrimSpace(doc.Find(`script[type="application/ld+json"]`).First().Text()); raw != "" {
		var ld jobPostingLD
		if err := json.Unmarshal([]byte(raw), &ld); err == nil {
			fields.Title = ld.Title
			fields.Snippet = ld.Description
			fields.JobType = ld.EmploymentType
			fields.CompanyName = ld.HiringOrganization.Name
			fields.Location = ld.JobLocation.Address.AddressLocality
			fields.PostingID = ld.Identifier.Value
			fields.PublishedDate = parseTimestamp(ld.DatePosted)
			fields.SalaryRange = salaryPattern.FindString(ld.Description)
		}
	}

	if fields.Title == "" {
		fields.Title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}
	if fields.Snippet == "" {
		fields.Snippet, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}

	return fields
}
