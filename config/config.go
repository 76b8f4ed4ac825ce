package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Session   SessionConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8090
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instances. Visibility is a
// per-request choice, so there is no global headless toggle here.
type BrowserConfig struct {
	// MaxPages is the page pool capacity per browser (max concurrent tabs).
	MaxPages int // default: 8

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// FetchConfig controls fetch behavior across all strategies.
type FetchConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 20s

	// BlockedResourceTypes lists browser resource types to block for
	// faster loads. Attribute values survive blocking, so selectors
	// still see src/href of unfetched resources.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// SessionConfig controls panel session retention.
type SessionConfig struct {
	// TTL is how long an idle session keeps its results and history.
	TTL time.Duration // default: 2h
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached runs.
	MaxEntries int // default: 256
}

// AuthConfig controls API key authentication. The panel is local-first
// and single-user, so auth ships disabled; enable it when exposing the
// API beyond localhost.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPEDECK_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPEDECK_PORT", 8090),
			Mode: envOr("SCRAPEDECK_MODE", "release"),
		},
		Browser: BrowserConfig{
			MaxPages:     envIntOr("SCRAPEDECK_MAX_PAGES", 8),
			DefaultProxy: os.Getenv("SCRAPEDECK_PROXY"),
			NoSandbox:    envBoolOr("SCRAPEDECK_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SCRAPEDECK_BROWSER_BIN"),
		},
		Fetch: FetchConfig{
			DefaultTimeout:    envDurationOr("SCRAPEDECK_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("SCRAPEDECK_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("SCRAPEDECK_NAV_TIMEOUT", 20*time.Second),
			BlockedResourceTypes: envSliceOr("SCRAPEDECK_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Session: SessionConfig{
			TTL: envDurationOr("SCRAPEDECK_SESSION_TTL", 2*time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SCRAPEDECK_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SCRAPEDECK_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPEDECK_RATE_RPS", 5.0),
			Burst:             envIntOr("SCRAPEDECK_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SCRAPEDECK_CACHE_MAX_ENTRIES", 256),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPEDECK_LOG_LEVEL", "info"),
			Format: envOr("SCRAPEDECK_LOG_FORMAT", "json"),
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Browser.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1, got %d", c.Browser.MaxPages)
	}
	if c.Fetch.MaxTimeout < c.Fetch.DefaultTimeout {
		return fmt.Errorf("max timeout %s is below default timeout %s", c.Fetch.MaxTimeout, c.Fetch.DefaultTimeout)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth enabled but no API keys configured")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
