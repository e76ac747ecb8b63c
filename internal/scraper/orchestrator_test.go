package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jobradar/go-jobboard/internal/domain"
)

// fakeFetcher serves canned pages keyed by start index.
type fakeFetcher struct {
	pages map[int][]domain.SearchItem
	errs  map[int]error
	calls []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, query string, start int) ([]domain.SearchItem, error) {
	f.calls = append(f.calls, start)
	if err := f.errs[start]; err != nil {
		return nil, err
	}
	return f.pages[start], nil
}

// fakeStore records saves in memory and can fail specific links.
type fakeStore struct {
	mu       sync.Mutex
	saved    map[string]domain.Posting
	failLink string
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]domain.Posting{}}
}

func (s *fakeStore) Save(ctx context.Context, p *domain.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Link == s.failLink {
		return errors.New("constraint violation")
	}
	s.saved[p.Link] = *p
	return nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved), nil
}

type fakeDetail struct {
	fields domain.Fields
	err    error
	calls  int
}

func (d *fakeDetail) Fetch(url string) (domain.Fields, error) {
	d.calls++
	return d.fields, d.err
}

func makeItems(n, offset int) []domain.SearchItem {
	items := make([]domain.SearchItem, n)
	for i := range items {
		items[i] = domain.SearchItem{
			Title:       fmt.Sprintf("Job %d", offset+i),
			Link:        fmt.Sprintf("https://example.com/jobs/%d", offset+i),
			DisplayLink: "example.com",
			Snippet:     "A role.",
		}
	}
	return items
}

func TestRunCycle_PartialFailureTolerated(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]domain.SearchItem{1: makeItems(5, 0)}}
	store := newFakeStore()
	store.failLink = "https://example.com/jobs/2"

	o := New(fetcher, nil, store, nil, Config{Query: "q", MaxResults: 10, Concurrency: 3})

	report, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if report.TotalFound != 5 {
		t.Errorf("TotalFound = %d, want 5", report.TotalFound)
	}
	if report.Added != 4 {
		t.Errorf("Added = %d, want 4 (one item failed persistence)", report.Added)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if _, ok := store.saved["https://example.com/jobs/2"]; ok {
		t.Error("failing link unexpectedly stored")
	}
}

func TestRunCycle_StopsOnEmptyPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]domain.SearchItem{
		1:  makeItems(10, 0),
		11: {},
		21: makeItems(10, 20), // must never be requested
	}}
	store := newFakeStore()

	o := New(fetcher, nil, store, nil, Config{Query: "q", MaxResults: 30})

	report, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if report.TotalFound != 10 {
		t.Errorf("TotalFound = %d, want 10", report.TotalFound)
	}
	wantCalls := []int{1, 11}
	if len(fetcher.calls) != len(wantCalls) {
		t.Errorf("fetch calls = %v, want %v", fetcher.calls, wantCalls)
	}
}

func TestRunCycle_SkipsFailedPage(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]domain.SearchItem{
			1:  makeItems(10, 0),
			21: makeItems(3, 20),
		},
		errs: map[int]error{11: errors.New("quota exceeded")},
	}
	store := newFakeStore()

	o := New(fetcher, nil, store, nil, Config{Query: "q", MaxResults: 30})

	report, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if report.TotalFound != 13 {
		t.Errorf("TotalFound = %d, want 13 (failed page skipped, next attempted)", report.TotalFound)
	}
	if report.Added != 13 {
		t.Errorf("Added = %d, want 13", report.Added)
	}
}

func TestRunCycle_AllPagesFail(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[int]error{1: errors.New("no key")}}
	store := newFakeStore()

	o := New(fetcher, nil, store, nil, Config{Query: "q", MaxResults: 10})

	report, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v, want nil (empty cycle is not an error)", err)
	}
	if report.TotalFound != 0 || report.Added != 0 {
		t.Errorf("report = %+v, want empty cycle", report)
	}
}

func TestRunCycle_DetailEnrichment(t *testing.T) {
	platformLink := "https://acme.wd5.myworkdayjobs.com/job/77"
	fetcher := &fakeFetcher{pages: map[int][]domain.SearchItem{1: {
		{
			Title:       "Search Title",
			Link:        platformLink,
			DisplayLink: "acme.wd5.myworkdayjobs.com",
			Snippet:     "short snippet",
		},
	}}}
	store := newFakeStore()
	detail := &fakeDetail{fields: domain.Fields{
		Title:       "Scraped Title",
		CompanyName: "Acme Corporation",
		Snippet:     "Rich scraped description.",
	}}

	o := New(fetcher, detail, store, nil, Config{Query: "q", MaxResults: 10})

	if _, err := o.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if detail.calls != 1 {
		t.Fatalf("detail fetches = %d, want 1", detail.calls)
	}
	got := store.saved[platformLink]
	if got.Title != "Scraped Title" {
		t.Errorf("Title = %q, want scraped value preferred", got.Title)
	}
	if got.CompanyName != "Acme Corporation" {
		t.Errorf("CompanyName = %q, want scraped value", got.CompanyName)
	}
	if got.Snippet != "Rich scraped description." {
		t.Errorf("Snippet = %q, want scraped description", got.Snippet)
	}
}

func TestRunCycle_DetailFailureFallsBackToSearchFields(t *testing.T) {
	platformLink := "https://acme.myworkday.com/job/9"
	fetcher := &fakeFetcher{pages: map[int][]domain.SearchItem{1: {
		{Title: "Search Title", Link: platformLink, DisplayLink: "acme.myworkday.com", Snippet: "s"},
	}}}
	store := newFakeStore()
	detail := &fakeDetail{err: errors.New("timeout")}

	o := New(fetcher, detail, store, nil, Config{Query: "q", MaxResults: 10})

	report, err := o.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if report.Added != 1 {
		t.Fatalf("Added = %d, want 1 (item persisted despite detail failure)", report.Added)
	}
	if got := store.saved[platformLink]; got.Title != "Search Title" {
		t.Errorf("Title = %q, want search-result title", got.Title)
	}
}

// seenAll reports every link as already processed.
type seenAll struct{}

func (seenAll) Seen(ctx context.Context, link string) (bool, error) { return true, nil }
func (seenAll) MarkSeen(ctx context.Context, link string) error     { return nil }

func TestRunCycle_SeenCacheSkipsDetailFetch(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[int][]domain.SearchItem{1: {
		{Title: "T", Link: "https://acme.myworkday.com/job/1", DisplayLink: "acme.myworkday.com"},
	}}}
	store := newFakeStore()
	detail := &fakeDetail{}

	o := New(fetcher, detail, store, seenAll{}, Config{Query: "q", MaxResults: 10})

	if _, err := o.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if detail.calls != 0 {
		t.Errorf("detail fetches = %d, want 0 for seen link", detail.calls)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved = %d, want 1 (store still gets the item)", len(store.saved))
	}
}
