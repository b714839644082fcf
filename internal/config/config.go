package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmle94/openaq-dashboard/internal/common"
)

// AppConfig holds all runtime configuration for the dashboard service.
type AppConfig struct {
	// OpenAQ API access.
	APIKey  string
	BaseURL string

	// Outgoing request budget per rolling minute.
	RequestsPerMinute int

	// CacheTTL controls how long memoized query results stay valid.
	CacheTTL time.Duration

	// RefreshInterval controls how often the scheduler re-primes the cache.
	RefreshInterval time.Duration

	// WarmCountries are country codes whose locations the scheduler warms.
	WarmCountries []string

	HTTPTimeout   time.Duration
	SessionMaxAge time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
// A missing OPENAQ_API_KEY is a fatal configuration error: it is reported
// here, before any network call is attempted.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("OPENAQ_API_KEY")
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAQ API key not configured: set the OPENAQ_API_KEY environment variable")
	}

	cfg.BaseURL = getenvDefault("OPENAQ_BASE_URL", "https://api.openaq.org/v3")
	cfg.RequestsPerMinute = getenvInt("OPENAQ_REQUESTS_PER_MINUTE", 60)

	ttlStr := getenvDefault("CACHE_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	refreshStr := getenvDefault("REFRESH_INTERVAL", "15m")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	cfg.WarmCountries = common.SplitList(os.Getenv("DASHBOARD_COUNTRIES"))

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	sessionStr := getenvDefault("SESSION_MAX_AGE", "1h")
	sessionAge, err := time.ParseDuration(sessionStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}
	cfg.SessionMaxAge = sessionAge

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
