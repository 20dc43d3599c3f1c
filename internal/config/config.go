// Package config reads the process environment into a typed Config,
// following the teacher's getEnv/getEnvAsInt helper pattern (spec.md 6:
// "credentials and model names are read from process environment").
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Port        int
	Environment string

	LLM        LLMConfig
	Geocoder   GeocoderConfig
	Spatial    SpatialConfig
	Routing    RoutingConfig
	Redis      RedisConfig
	Cache      CacheConfig
	RateLimits RateLimitConfig
	CORS       CORSConfig
	HTTP       HTTPConfig
}

// LLMConfig selects and configures the reasoning provider (spec 4.3).
type LLMConfig struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// GeocoderConfig points at the primary/secondary free geocoders (spec 4.4).
type GeocoderConfig struct {
	PrimaryBaseURL   string
	SecondaryBaseURL string
	UserAgent        string
}

// SpatialConfig points at the Overpass-compatible tag-query endpoint
// (spec 4.5).
type SpatialConfig struct {
	Endpoint string
	Workers  int
}

// RoutingConfig points at the OSRM-compatible routing backend (spec 4.7).
type RoutingConfig struct {
	BaseURL string
}

// RedisConfig configures the distributed cache tier (spec 4.1). Host
// empty means "no distributed tier" — the cache degrades to local-only.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds TTLs for the cache key families (spec 4.1).
type CacheConfig struct {
	DiscoveryTTL time.Duration
	PlaceTTL     time.Duration
}

// RateLimitConfig mirrors the bounded-concurrency semaphores spec 5
// requires per external provider.
type RateLimitConfig struct {
	GeocoderConcurrency  int
	GeocoderReleaseSleep time.Duration
	ImageConcurrency     int
}

// CORSConfig holds the static CORS allow-list (spec 6).
type CORSConfig struct {
	AllowedOrigins []string
}

// HTTPConfig tunes the per-request middleware guarding the API surface:
// a per-client-IP rate limit, a hard request deadline, and a body size
// cap (spec 6's endpoints are all small JSON payloads).
type HTTPConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Load reads configuration from environment variables with sensible
// defaults for local development against the public, free-tier backends.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvAsInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		LLM: LLMConfig{
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		},
		Geocoder: GeocoderConfig{
			PrimaryBaseURL:   getEnv("GEOCODER_PRIMARY_URL", "https://nominatim.openstreetmap.org"),
			SecondaryBaseURL: getEnv("GEOCODER_SECONDARY_URL", ""),
			UserAgent:        getEnv("GEOCODER_USER_AGENT", "itinerary-engine/1.0"),
		},
		Spatial: SpatialConfig{
			Endpoint: getEnv("SPATIAL_ENDPOINT", "https://overpass-api.de/api/interpreter"),
			Workers:  getEnvAsInt("SPATIAL_WORKERS", 2),
		},
		Routing: RoutingConfig{
			BaseURL: getEnv("ROUTING_BASE_URL", "https://router.project-osrm.org"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			DiscoveryTTL: getEnvAsDuration("CACHE_DISCOVERY_TTL", 24*time.Hour),
			PlaceTTL:     getEnvAsDuration("CACHE_PLACE_TTL", 24*time.Hour),
		},
		RateLimits: RateLimitConfig{
			GeocoderConcurrency:  getEnvAsInt("GEOCODER_CONCURRENCY", 3),
			GeocoderReleaseSleep: getEnvAsDuration("GEOCODER_RELEASE_SLEEP", 350*time.Millisecond),
			ImageConcurrency:     getEnvAsInt("IMAGE_CONCURRENCY", 3),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   getEnvAsFloat("HTTP_RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvAsInt("HTTP_RATE_LIMIT_BURST", 10),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   int64(getEnvAsInt("HTTP_MAX_BODY_BYTES", 10<<20)),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable with a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets an environment variable as an integer with a fallback
// value.
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getEnvAsFloat gets an environment variable as a float64 with a fallback
// value.
func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvAsDuration parses a Go duration string (e.g. "350ms", "24h"),
// falling back on an unset or malformed value.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvAsStringSlice parses a comma-separated environment variable into a
// trimmed string slice.
func getEnvAsStringSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
