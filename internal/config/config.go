package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the aggregator
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Redis   RedisConfig
	Search  SearchConfig
	Scraper ScraperConfig
}

type ServerConfig struct {
	Port int
	// Directory served at / for the browser UI
	StaticDir string
	// Default page size for /api/jobs
	PageSize int
}

type StoreConfig struct {
	// "sqlite" or "postgres"; postgres is selected automatically when
	// DATABASE_URL is set
	Driver string
	// SQLite file path or postgres connection string
	DSN string
}

type RedisConfig struct {
	// Empty Addr disables the seen-cache entirely
	Addr     string
	Password string
	DB       int
}

type SearchConfig struct {
	// Google Custom Search credentials, read at call time so a missing key
	// fails the page fetch rather than startup
	APIKey   string
	EngineID string
	Query    string
}

type ScraperConfig struct {
	// Upper bound on results per cycle; the API serves 10 per page
	MaxResults int
	// Fixed delay between successive page requests
	PageDelay time.Duration
	// Concurrent per-item extract-and-persist workers
	Concurrency int
	// Detail-page fetch settings
	UserAgent    string
	FetchTimeout time.Duration
	// Hours between scheduled scrape cycles; 0 disables the scheduler
	IntervalHours int
}

// Load creates a Config from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:      getEnvInt("PORT", 3000),
			StaticDir: getEnv("STATIC_DIR", "public"),
			PageSize:  getEnvInt("PAGE_SIZE", 10),
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    getEnv("SQLITE_PATH", "jobs.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Search: SearchConfig{
			APIKey:   getEnv("GOOGLE_API_KEY", ""),
			EngineID: getEnv("GOOGLE_ENGINE_ID", "e180cd071c7b94b1c"),
			Query:    getEnv("SEARCH_QUERY", "java developer jobs"),
		},
		Scraper: ScraperConfig{
			MaxResults:    getEnvInt("SCRAPE_MAX_RESULTS", 100),
			PageDelay:     time.Duration(getEnvInt("SCRAPE_PAGE_DELAY_MS", 1000)) * time.Millisecond,
			Concurrency:   getEnvInt("SCRAPE_CONCURRENCY", 5),
			UserAgent:     getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_MS", 15000)) * time.Millisecond,
			IntervalHours: getEnvInt("SCRAPE_INTERVAL_HOURS", 0),
		},
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Store.Driver = "postgres"
		cfg.Store.DSN = url
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
