package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/jobradar/go-jobboard/internal/config"
	"github.com/jobradar/go-jobboard/internal/dedup"
	"github.com/jobradar/go-jobboard/internal/extract"
	"github.com/jobradar/go-jobboard/internal/scraper"
	"github.com/jobradar/go-jobboard/internal/search"
	"github.com/jobradar/go-jobboard/internal/server"
	"github.com/jobradar/go-jobboard/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Job Board Service")

	cfg := config.Load()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		log.Fatalf("Store connection failed: %v", err)
	}
	defer st.Close()
	log.Printf("Store connected (%s)", cfg.Store.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seen-cache is optional: without Redis every platform link gets its
	// detail page refetched each cycle, which is correct, just slower.
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
			log.Println("Redis connected")
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

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := server.New(orch, st, addr, cfg.Server.StaticDir, cfg.Server.PageSize)

	var scheduler *cron.Cron
	if cfg.Scraper.IntervalHours > 0 {
		scheduler = cron.New()
		spec := fmt.Sprintf("@every %dh", cfg.Scraper.IntervalHours)
		if _, err := scheduler.AddFunc(spec, func() {
			if _, err := orch.RunCycle(ctx); err != nil {
				log.Printf("Scheduled scrape error: %v", err)
			}
		}); err != nil {
			log.Fatalf("cron.AddFunc: %v", err)
		}
		scheduler.Start()
		log.Printf("Scrape scheduler started (%s)", spec)
	}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %v, shutting down", sig)

	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
