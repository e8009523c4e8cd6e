package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReportCache caches serialized aggregate results with a TTL. Entries
// expire on their own; writes to the underlying tables do not
// invalidate them, so readers can see results up to one TTL old.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Key builds a cache key from a report kind, tenant and qualifier
func Key(kind string, tenantID uuid.UUID, qualifier string) string {
	if qualifier == "" {
		return fmt.Sprintf("%s:%s", kind, tenantID)
	}
	return fmt.Sprintf("%s:%s:%s", kind, tenantID, qualifier)
}

// RedisReportCache implements ReportCache on Redis
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReportCache creates a report cache on an existing Redis client
func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client, keyPrefix: "report:"}
}

// Get loads and unmarshals a cached value. The second return is false
// on a cache miss.
func (c *RedisReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read report cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return true, nil
}

// Set marshals and stores a value with the given TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode report for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write report cache: %w", err)
	}
	return nil
}

var _ ReportCache = (*RedisReportCache)(nil)

// NewRedisClient creates a Redis client and verifies connectivity
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
