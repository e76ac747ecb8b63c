// Package search is the client for the Google Custom Search JSON API, the
// external source of job listing results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobradar/go-jobboard/internal/domain"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	httpTimeout    = 15 * time.Second

	// PageSize is fixed by the API: ten results per request.
	PageSize = 10
)

// ErrMissingCredentials is returned by FetchPage when no API key or engine
// ID is configured. Callers treat it as a per-page failure, not a fatal one.
var ErrMissingCredentials = errors.New("search API credentials not set")

// Client fetches job search results from the Google Custom Search API.
type Client struct {
	APIKey   string
	EngineID string
	// BaseURL may be overridden in tests; empty means the real endpoint.
	BaseURL string
	client  *http.Client
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(apiKey, engineID string) *Client {
	return &Client{
		APIKey:   apiKey,
		EngineID: engineID,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

// apiResponse mirrors the top-level Custom Search JSON response.
type apiResponse struct {
	Items []apiItem `json:"items"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("search API error %d: %s", e.Code, e.Message)
}

// apiItem mirrors a single search result.
type apiItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	DisplayLink string     `json:"displayLink"`
	Snippet     string     `json:"snippet"`
	PageMap     apiPageMap `json:"pagemap"`
}

type apiPageMap struct {
	MetaTags     []map[string]string `json:"metatags"`
	Organization []struct {
		Name string `json:"name"`
	} `json:"organization"`
	JobPosting []struct {
		DatePosted string `json:"dateposted"`
	} `json:"jobposting"`
}

// FetchPage retrieves one page of results for the given query. start is the
// 1-based index of the first result (1, 11, 21, …). An empty slice with nil
// error means the result set is exhausted.
func (c *Client) FetchPage(ctx context.Context, query string, start int) ([]domain.SearchItem, error) {
	if c.APIKey == "" || c.EngineID == "" {
		return nil, ErrMissingCredentials
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("cx", c.EngineID)
	params.Set("q", query)
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if apiResp.Error != nil {
		return nil, apiResp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, string(body))
	}

	items := make([]domain.SearchItem, 0, len(apiResp.Items))
	for _, it := range apiResp.Items {
		items = append(items, domain.SearchItem{
			Title:       it.Title,
			Link:        it.Link,
			DisplayLink: it.DisplayLink,
			Snippet:     it.Snippet,
			PageMap:     toPageMap(it.PageMap),
		})
	}

	return items, nil
}

func toPageMap(pm apiPageMap) domain.PageMap {
	out := domain.PageMap{}
	if len(pm.Organization) > 0 {
		out.OrganizationName = pm.Organization[0].Name
	}
	if len(pm.JobPosting) > 0 {
		out.DatePosted = pm.JobPosting[0].DatePosted
	}
	if len(pm.MetaTags) > 0 {
		out.PublishedTime = pm.MetaTags[0]["article:published_time"]
	}
	return out
}
