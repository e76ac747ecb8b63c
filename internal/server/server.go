// Package server is the HTTP adapter: the scrape trigger, the jobs API, the
// admin table, and the static browser UI.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/jobradar/go-jobboard/internal/domain"
)

// Scraper triggers one scrape cycle.
type Scraper interface {
	RunCycle(ctx context.Context) (domain.CycleReport, error)
}

// Storage is the subset of the store the server reads from.
type Storage interface {
	Search(ctx context.Context, term string, page, limit int) (domain.Page, error)
	All(ctx context.Context) ([]domain.Posting, error)
}

// Server serves the HTTP API.
type Server struct {
	scraper  Scraper
	store    Storage
	mux      *http.ServeMux
	server   *http.Server
	pageSize int
}

// New creates a Server. staticDir may be empty to disable static serving.
func New(scraper Scraper, store Storage, addr, staticDir string, pageSize int) *Server {
	if pageSize <= 0 {
		pageSize = 10
	}
	s := &Server{
		scraper:  scraper,
		store:    store,
		mux:      http.NewServeMux(),
		pageSize: pageSize,
	}
	s.routes(staticDir)
	s.server = &http.Server{Addr: addr, Handler: s.mux}
	return s
}

func (s *Server) routes(staticDir string) {
	s.mux.HandleFunc("GET /scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/jobs", s.handleJobs)
	s.mux.HandleFunc("GET /admin", s.handleAdmin)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if staticDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}
}

// scrapeResponse is the JSON response for GET /scrape.
type scrapeResponse struct {
	Message    string `json:"message"`
	Count      int    `json:"count"`
	TotalFound int    `json:"totalFound"`
	TotalInDB  int    `json:"totalInDB"`
}

// errorResponse is the JSON error response.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	report, err := s.scraper.RunCycle(r.Context())
	if err != nil {
		log.Printf("[server] scrape cycle error: %v", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to scrape jobs",
			Details: err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, scrapeResponse{
		Message:    "Jobs scraped and saved successfully",
		Count:      report.Added,
		TotalFound: report.TotalFound,
		TotalInDB:  report.TotalInDB,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	limit := s.pageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := s.store.Search(r.Context(), term, page, limit)
	if err != nil {
		log.Printf("[server] jobs query error: %v", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
