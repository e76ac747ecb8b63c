// Package scraper drives the scrape cycle: paged search API fetches, field
// extraction, detail-page enrichment, and persistence.
package scraper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jobradar/go-jobboard/internal/cleaner"
	"github.com/jobradar/go-jobboard/internal/dedup"
	"github.com/jobradar/go-jobboard/internal/domain"
	"github.com/jobradar/go-jobboard/internal/extract"
	"github.com/jobradar/go-jobboard/internal/search"
)

// Fetcher fetches one page of search results, starting at a 1-based index.
type Fetcher interface {
	FetchPage(ctx context.Context, query string, start int) ([]domain.SearchItem, error)
}

// DetailScraper fetches and parses a posting's platform detail page.
type DetailScraper interface {
	Fetch(url string) (domain.Fields, error)
}

// Storage is the subset of the store the orchestrator needs.
type Storage interface {
	Save(ctx context.Context, p *domain.Posting) error
	Count(ctx context.Context) (int, error)
}

// Config bounds one scrape cycle.
type Config struct {
	Query       string
	MaxResults  int
	PageDelay   time.Duration
	Concurrency int
}

// Orchestrator runs scrape cycles.
type Orchestrator struct {
	fetcher Fetcher
	detail  DetailScraper
	store   Storage
	seen    dedup.SeenCache
	clean   *cleaner.Cleaner
	cfg     Config
}

// New constructs an Orchestrator. detail may be nil to disable platform
// detail enrichment; seen may be nil for no cross-cycle cache.
func New(fetcher Fetcher, detail DetailScraper, store Storage, seen dedup.SeenCache, cfg Config) *Orchestrator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if seen == nil {
		seen = dedup.NopCache{}
	}
	return &Orchestrator{
		fetcher: fetcher,
		detail:  detail,
		store:   store,
		seen:    seen,
		clean:   cleaner.New(),
		cfg:     cfg,
	}
}

// RunCycle executes one full scrape cycle. A page that fails is skipped, an
// item that fails is skipped; only a store that cannot even be counted fails
// the cycle as a whole.
func (o *Orchestrator) RunCycle(ctx context.Context) (domain.CycleReport, error) {
	baseline, err := o.store.Count(ctx)
	if err != nil {
		return domain.CycleReport{}, err
	}

	items := o.fetchAll(ctx)
	log.Printf("[scraper] total jobs found: %d", len(items))

	failed := o.processAll(ctx, items)

	final, err := o.store.Count(ctx)
	if err != nil {
		return domain.CycleReport{}, err
	}

	report := domain.CycleReport{
		Added:      final - baseline,
		TotalFound: len(items),
		TotalInDB:  final,
		Failed:     failed,
	}
	log.Printf("[scraper] cycle done: %d found, %d new, %d failed, %d total in db",
		report.TotalFound, report.Added, report.Failed, report.TotalInDB)
	return report, nil
}

// fetchAll accumulates results across pages, skipping failed pages and
// stopping early when a page comes back empty.
func (o *Orchestrator) fetchAll(ctx context.Context) []domain.SearchItem {
	numPages := (o.cfg.MaxResults + search.PageSize - 1) / search.PageSize

	var items []domain.SearchItem
	for i := 0; i < numPages; i++ {
		start := i*search.PageSize + 1
		batch, err := o.fetcher.FetchPage(ctx, o.cfg.Query, start)
		if err != nil {
			log.Printf("[scraper] page %d/%d failed: %v", i+1, numPages, err)
		} else if len(batch) == 0 {
			log.Printf("[scraper] no results on page %d, stopping", i+1)
			break
		} else {
			items = append(items, batch...)
			log.Printf("[scraper] page %d/%d: %d results", i+1, numPages, len(batch))
		}

		if i < numPages-1 && o.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return items
			case <-time.After(o.cfg.PageDelay):
			}
		}
	}
	return items
}

// processAll fans items out over a bounded worker group and returns how many
// failed. No item failure stops the others.
func (o *Orchestrator) processAll(ctx context.Context, items []domain.SearchItem) int {
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.cfg.Concurrency)
	errCh := make(chan error, len(items))

	for _, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item domain.SearchItem) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := o.processItem(ctx, item); err != nil {
				log.Printf("[scraper] item %s failed: %v", item.Link, err)
				errCh <- err
			}
		}(item)
	}

	wg.Wait()
	close(errCh)

	failed := 0
	for range errCh {
		failed++
	}
	return failed
}

func (o *Orchestrator) processItem(ctx context.Context, item domain.SearchItem) error {
	fields := extract.FromSearchItem(item)

	if fields.PlatformURL != "" && o.detail != nil {
		seen, err := o.seen.Seen(ctx, item.Link)
		if err != nil {
			log.Printf("[scraper] seen-cache check failed for %s: %v", item.Link, err)
		}
		if !seen {
			detail, err := o.detail.Fetch(item.Link)
			if err != nil {
				// Fall back to the search-result fields alone.
				log.Printf("[scraper] detail fetch failed for %s: %v", item.Link, err)
			} else {
				fields = fields.Merge(detail)
			}
		}
	}

	posting := &domain.Posting{
		Title:         fields.Title,
		CompanyName:   fields.CompanyName,
		Location:      fields.Location,
		JobType:       fields.JobType,
		SalaryRange:   fields.SalaryRange,
		Link:          item.Link,
		PlatformURL:   fields.PlatformURL,
		SourceDomain:  item.DisplayLink,
		Snippet:       o.clean.CleanToText(fields.Snippet),
		PublishedDate: fields.PublishedDate,
	}

	if err := o.store.Save(ctx, posting); err != nil {
		return err
	}

	if err := o.seen.MarkSeen(ctx, item.Link); err != nil {
		log.Printf("[scraper] seen-cache mark failed for %s: %v", item.Link, err)
	}
	return nil
}
