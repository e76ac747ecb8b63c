// One-shot scraper: runs a single scrape cycle and exits. Useful under an
// external cron where the long-running server's scheduler is not wanted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobradar/go-jobboard/internal/config"
	"github.com/jobradar/go-jobboard/internal/dedup"
	"github.com/jobradar/go-jobboard/internal/extract"
	"github.com/jobradar/go-jobboard/internal/scraper"
	"github.com/jobradar/go-jobboard/internal/search"
	"github.com/jobradar/go-jobboard/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting one-shot scrape")

	cfg := config.Load()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		log.Fatalf("Store connection failed: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Interrupt received, cancelling")
		cancel()
	}()

	var seen dedup.SeenCache = dedup.NopCache{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis connection failed, continuing without seen-cache: %v", err)
		} else {
			seen = dedup.NewRedisCache(rdb, "seen", 30*24*time.Hour)
		}
	}

	fetcher := search.NewClient(cfg.Search.APIKey, cfg.Search.EngineID)
	detail := extract.NewDetailFetcher(cfg.Scraper.UserAgent, cfg.Scraper.FetchTimeout, cfg.Scraper.PageDelay)

	orch := scraper.New(fetcher, detail, st, seen, scraper.Config{
		Query:       cfg.Search.Query,
		MaxResults:  cfg.Scraper.MaxResults,
		PageDelay:   cfg.Scraper.PageDelay,
		Concurrency: cfg.Scraper.Concurrency,
	})

	report, err := orch.RunCycle(ctx)
	if err != nil {
		log.Fatalf("Scrape cycle failed: %v", err)
	}

	log.Printf("Done: %d found, %d new, %d total in db", report.TotalFound, report.Added, report.TotalInDB)
}
