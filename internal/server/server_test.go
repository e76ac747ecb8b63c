package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobradar/go-jobboard/internal/domain"
)

type stubScraper struct {
	report domain.CycleReport
	err    error
}

func (s *stubScraper) RunCycle(ctx context.Context) (domain.CycleReport, error) {
	return s.report, s.err
}

type stubStore struct {
	page     domain.Page
	all      []domain.Posting
	err      error
	lastTerm string
	lastPage int
	lastLim  int
}

func (s *stubStore) Search(ctx context.Context, term string, page, limit int) (domain.Page, error) {
	s.lastTerm, s.lastPage, s.lastLim = term, page, limit
	return s.page, s.err
}

func (s *stubStore) All(ctx context.Context) ([]domain.Posting, error) {
	return s.all, s.err
}

func newTestServer(scraper Scraper, store Storage) *Server {
	return New(scraper, store, ":0", "", 10)
}

func doRequest(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleScrape_Success(t *testing.T) {
	scraper := &stubScraper{report: domain.CycleReport{Added: 7, TotalFound: 20, TotalInDB: 42}}
	srv := newTestServer(scraper, &stubStore{})

	rec := doRequest(t, srv, "/scrape")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp scrapeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 7 || resp.TotalFound != 20 || resp.TotalInDB != 42 {
		t.Errorf("response = %+v, want counts 7/20/42", resp)
	}
	if resp.Message == "" {
		t.Error("response message is empty")
	}
}

func TestHandleScrape_Error(t *testing.T) {
	scraper := &stubScraper{err: errors.New("store unreachable")}
	srv := newTestServer(scraper, &stubStore{})

	rec := doRequest(t, srv, "/scrape")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error == "" || resp.Details != "store unreachable" {
		t.Errorf("error response = %+v", resp)
	}
}

func TestHandleJobs_Defaults(t *testing.T) {
	store := &stubStore{page: domain.Page{
		Jobs:       []domain.Posting{{Title: "Java Developer"}},
		Pagination: domain.Pagination{Total: 1, TotalPages: 1, CurrentPage: 1, Limit: 10},
	}}
	srv := newTestServer(&stubScraper{}, store)

	rec := doRequest(t, srv, "/api/jobs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if store.lastTerm != "" || store.lastPage != 1 || store.lastLim != 10 {
		t.Errorf("Search called with (%q, %d, %d), want (\"\", 1, 10)",
			store.lastTerm, store.lastPage, store.lastLim)
	}

	var page domain.Page
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].Title != "Java Developer" {
		t.Errorf("jobs = %+v", page.Jobs)
	}
}

func TestHandleJobs_QueryParams(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubScraper{}, store)

	doRequest(t, srv, "/api/jobs?search=java&page=3&limit=5")
	if store.lastTerm != "java" || store.lastPage != 3 || store.lastLim != 5 {
		t.Errorf("Search called with (%q, %d, %d), want (java, 3, 5)",
			store.lastTerm, store.lastPage, store.lastLim)
	}
}

func TestHandleJobs_InvalidParamsFallBack(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubScraper{}, store)

	doRequest(t, srv, "/api/jobs?page=zero&limit=-4")
	if store.lastPage != 1 || store.lastLim != 10 {
		t.Errorf("Search called with page=%d limit=%d, want defaults 1/10", store.lastPage, store.lastLim)
	}
}

func TestHandleJobs_StoreErrorIs500(t *testing.T) {
	store := &stubStore{err: errors.New("disk I/O error")}
	srv := newTestServer(&stubScraper{}, store)

	rec := doRequest(t, srv, "/api/jobs")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "disk I/O error" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandleAdmin(t *testing.T) {
	store := &stubStore{all: []domain.Posting{
		{ID: 1, Serial: "JOB-2024-0001", Title: "Java Developer", CompanyName: "Acme"},
	}}
	srv := newTestServer(&stubScraper{}, store)

	rec := doRequest(t, srv, "/admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"JOB-2024-0001", "Java Developer", "Acme", "1 records"} {
		if !strings.Contains(body, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubScraper{}, &stubStore{})

	rec := doRequest(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
