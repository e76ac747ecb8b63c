package domain

import "time"

// Posting represents one stored job listing, uniquely keyed by its source URL.
type Posting struct {
	ID            int64     `json:"id"`
	Serial        string    `json:"serial"`
	Title         string    `json:"title"`
	CompanyName   string    `json:"company_name"`
	Location      string    `json:"location"`
	JobType       string    `json:"job_type"`
	SalaryRange   string    `json:"salary_range"`
	Link          string    `json:"link"`
	PlatformURL   string    `json:"platform_url,omitempty"`
	SourceDomain  string    `json:"source_domain"`
	Snippet       string    `json:"snippet"`
	PublishedDate time.Time `json:"published_date,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchItem is one raw result from the external search API before any
// field extraction has happened.
type SearchItem struct {
	Title       string
	Link        string
	DisplayLink string
	Snippet     string
	PageMap     PageMap
}

// PageMap carries the structured data some search results embed alongside
// the snippet. All fields are optional.
type PageMap struct {
	OrganizationName string
	DatePosted       string
	PublishedTime    string
}

// Fields holds the extracted, best-effort fields for a posting. A zero value
// means the field could not be derived; that is an ordinary outcome, not an
// error.
type Fields struct {
	Title         string
	CompanyName   string
	Location      string
	JobType       string
	SalaryRange   string
	Snippet       string
	PlatformURL   string
	PostingID     string
	PublishedDate time.Time
}

// Merge overlays other on top of f, keeping f's value wherever other is
// empty. Used to prefer detail-page data over search-result data.
func (f Fields) Merge(other Fields) Fields {
	merged := f
	if other.Title != "" {
		merged.Title = other.Title
	}
	if other.CompanyName != "" {
		merged.CompanyName = other.CompanyName
	}
	if other.Location != "" {
		merged.Location = other.Location
	}
	if other.JobType != "" {
		merged.JobType = other.JobType
	}
	if other.SalaryRange != "" {
		merged.SalaryRange = other.SalaryRange
	}
	if other.Snippet != "" {
		merged.Snippet = other.Snippet
	}
	if other.PlatformURL != "" {
		merged.PlatformURL = other.PlatformURL
	}
	if other.PostingID != "" {
		merged.PostingID = other.PostingID
	}
	if !other.PublishedDate.IsZero() {
		merged.PublishedDate = other.PublishedDate
	}
	return merged
}

// CycleReport summarizes one scrape cycle.
type CycleReport struct {
	Added      int `json:"count"`
	TotalFound int `json:"totalFound"`
	TotalInDB  int `json:"totalInDB"`
	Failed     int `json:"-"`
}

// Page is one page of search results from the store.
type Page struct {
	Jobs       []Posting  `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the position of a Page within the full result set.
type Pagination struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
	Limit       int  `json:"limit"`
}
