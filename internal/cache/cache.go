// Package cache implements the two-tier cache described in spec.md 4.1: an
// in-process LRU-with-TTL tier in front of a Redis-backed distributed tier.
// The cache is never allowed to fail a request — every method degrades to
// a miss or a silently-dropped write rather than propagating an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/exotic-travel-booking/backend/internal/metrics"
)

// DefaultDiscoveryTTL is the default TTL for discovery results: landmark
// sets are slow-changing, so a day is a safe default (spec 4.1).
const DefaultDiscoveryTTL = 24 * time.Hour

const (
	defaultLocalCapacity = 2000
	defaultLocalTTL      = 10 * time.Minute
)

// Cache is the two-tier cache facade used by every package that needs to
// memoize an expensive external lookup.
type Cache struct {
	local       *LocalCache
	distributed *DistributedCache // nil is a valid "no distributed tier" config
}

// New builds a two-tier cache. distributed may be nil, in which case the
// cache degrades to local-only (still correct, just not shared across
// processes).
func New(distributed *DistributedCache) *Cache {
	return &Cache{
		local:       NewLocalCache(defaultLocalCapacity, defaultLocalTTL),
		distributed: distributed,
	}
}

var tracer = otel.Tracer("cache")

// Get looks up key, checking the local tier first. On a local miss it
// queries the distributed tier and, on a hit, promotes the value into the
// local tier. Any distributed-tier failure is treated as a miss (spec 4.1).
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (hit bool) {
	_, span := tracer.Start(ctx, "cache.get")
	defer span.End()
	defer func() { recordCacheOperation(hit) }()

	if raw, ok := c.local.Get(key); ok {
		if err := json.Unmarshal(raw, dest); err == nil {
			return true
		}
	}

	if c.distributed == nil {
		return false
	}

	if err := c.distributed.Get(ctx, key, dest); err != nil {
		return false
	}

	if raw, err := json.Marshal(dest); err == nil {
		c.local.Set(key, raw, DefaultDiscoveryTTL)
	}
	return true
}

// recordCacheOperation reports a cache lookup's outcome to the global
// metrics collector, if one is running (spec.md's observability ambient
// stack tracking fan-out and cache hit/miss counts).
func recordCacheOperation(hit bool) {
	if collector := metrics.GetGlobalCollector(); collector != nil {
		collector.RecordCacheOperation(hit, false)
	}
}

// Set writes to both tiers. The distributed write is fire-and-forget: a
// failure there is logged and otherwise ignored (spec 4.1).
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to marshal value for key %s: %v", key, err)
		return
	}
	c.local.Set(key, raw, ttl)

	if c.distributed == nil {
		return
	}
	if err := c.distributed.Set(ctx, key, value, ttl); err != nil {
		log.Printf("cache: distributed set failed for key %s (ignored): %v", key, err)
	}
}

// Invalidate removes every key matching a glob pattern from both tiers.
func (c *Cache) Invalidate(ctx context.Context, pattern string) {
	c.local.DeleteMatching(func(key string) bool { return globMatch(pattern, key) })

	if c.distributed == nil {
		return
	}
	if err := c.distributed.InvalidatePattern(ctx, pattern); err != nil {
		log.Printf("cache: distributed invalidate failed for pattern %s (ignored): %v", pattern, err)
	}
}

// globMatch is a tiny glob matcher supporting '*' only, sufficient for the
// "prefix:*" patterns the cache key space uses.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := len(parts) - 1
	for i := 1; i < last; i++ {
		part := parts[i]
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx == -1 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[last])
}

// DiscoveryKey builds the canonical discovery cache key (spec 3). Interests
// are canonicalized by lowercasing, trimming, and sorting so that
// differently-ordered or differently-cased interest lists collide onto the
// same key.
func DiscoveryKey(city string, limit int, interests []string) string {
	return fmt.Sprintf("discover:%s:%d:%s", canonicalCity(city), limit, canonicalInterests(interests))
}

// PlaceKey builds the canonical per-POI lookup key (spec 3).
func PlaceKey(city, placeID string) string {
	return fmt.Sprintf("poi:%s:%s", canonicalCity(city), placeID)
}

// FoodDiscoveryKey builds the canonical food-category discovery key (spec 3).
func FoodDiscoveryKey(city, category string, limit int) string {
	return fmt.Sprintf("discover_food:%s:%s:%d", canonicalCity(city), category, limit)
}

func canonicalCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func canonicalInterests(interests []string) string {
	if len(interests) == 0 {
		return "default"
	}
	sorted := make([]string, len(interests))
	copy(sorted, interests)
	for i, s := range sorted {
		sorted[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// SecondsToDuration is a tiny helper so call sites can pass ttl as seconds
// pulled from config without a time import at every call site.
func SecondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
