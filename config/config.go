package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetcher   FetcherConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Refresh   RefreshConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetcherConfig controls page fetching and retry behavior.
type FetcherConfig struct {
	// Attempts is the maximum number of fetch attempts per request,
	// each with a different request profile.
	Attempts int // default: 4

	// Timeout is the deadline for a single fetch attempt.
	Timeout time.Duration // default: 15s

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 // default: 10 MB

	// ProfileMemoryTTL is how long a domain remembers the profile that
	// last got through its bot protection.
	ProfileMemoryTTL time.Duration // default: 24h
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// TTL is how long a cached extraction stays fresh.
	TTL time.Duration // default: 24h

	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000
}

// AuthConfig controls API key authentication for the /api/v1 group.
// The /extract endpoint itself is always open: access control is the
// caller's responsibility.
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

// RefreshConfig controls batch refresh jobs.
type RefreshConfig struct {
	// MaxConcurrent bounds how many URLs a refresh job extracts at once.
	MaxConcurrent int // default: 5
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
			Host: envOr("WANT_HOST", "0.0.0.0"),
			Port: envIntOr("WANT_PORT", 8080),
			Mode: envOr("WANT_MODE", "release"),
		},
		Fetcher: FetcherConfig{
			Attempts:         envIntOr("WANT_FETCH_ATTEMPTS", 4),
			Timeout:          envDurationOr("WANT_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes:     int64(envIntOr("WANT_FETCH_MAX_BODY", 10<<20)),
			ProfileMemoryTTL: envDurationOr("WANT_PROFILE_MEMORY_TTL", 24*time.Hour),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("WANT_CACHE_TTL", 24*time.Hour),
			MaxEntries: envIntOr("WANT_CACHE_MAX_ENTRIES", 1000),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("WANT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("WANT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WANT_RATE_RPS", 5.0),
			Burst:             envIntOr("WANT_RATE_BURST", 10),
		},
		Refresh: RefreshConfig{
			MaxConcurrent: envIntOr("WANT_REFRESH_CONCURRENCY", 5),
		},
		Log: LogConfig{
			Level:  envOr("WANT_LOG_LEVEL", "info"),
			Format: envOr("WANT_LOG_FORMAT", "json"),
		},
	}
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
