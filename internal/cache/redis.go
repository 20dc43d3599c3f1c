package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration for the distributed cache tier.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DistributedCache wraps a Redis client. Every method here is a best-effort
// operation from the caller's point of view: the two-tier Cache in
// cache.go never lets a DistributedCache failure fail a request (spec 4.1).
type DistributedCache struct {
	client *redis.Client
	config Config
}

// NewDistributedCache creates a new Redis-backed cache client with pool
// defaults tuned for many small, short-lived requests.
func NewDistributedCache(config Config) (*DistributedCache, error) {
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	if config.MinIdleConns == 0 {
		config.MinIdleConns = 2
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 3 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 3 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("redis cache connection established with pool size %d", config.PoolSize)

	return &DistributedCache{client: rdb, config: config}, nil
}

// Set stores a JSON-marshaled value with an expiration.
func (c *DistributedCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Get retrieves and JSON-unmarshals a value. Returns ErrCacheMiss when the
// key is absent.
func (c *DistributedCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// Delete removes one or more keys.
func (c *DistributedCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// InvalidatePattern deletes every key matching a glob pattern. It scans
// with SCAN (not KEYS) and deletes in batches so a large key space never
// blocks Redis for the duration of the invalidation (spec 4.1).
func (c *DistributedCache) InvalidatePattern(ctx context.Context, pattern string) error {
	const batchSize = 200
	var cursor uint64
	var batch []string
	deleted := 0

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan pattern %s: %w", pattern, err)
		}
		batch = append(batch, keys...)
		cursor = next

		for len(batch) >= batchSize {
			if err := c.client.Del(ctx, batch[:batchSize]...).Err(); err != nil {
				return fmt.Errorf("failed to delete batch for pattern %s: %w", pattern, err)
			}
			deleted += batchSize
			batch = batch[batchSize:]
		}

		if cursor == 0 {
			break
		}
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete final batch for pattern %s: %w", pattern, err)
		}
		deleted += len(batch)
	}

	log.Printf("invalidated %d cache keys matching pattern: %s", deleted, pattern)
	return nil
}

// HealthCheck pings Redis.
func (c *DistributedCache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *DistributedCache) Close() error {
	return c.client.Close()
}

// ErrCacheMiss is returned by Get when a key is absent.
var ErrCacheMiss = fmt.Errorf("cache miss")
