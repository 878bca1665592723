// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/freshmandi/marketplace-backend/internal/config"
)

// Client is a cache-aside wrapper around Redis. A nil *Client is a valid
// no-op cache, so callers never have to branch on whether caching is enabled.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{
		rdb: rdb,
		ttl: time.Duration(cfg.CacheTTL) * time.Second,
	}, nil
}

func (c *Client) Close() {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close redis connection")
	}
}

// GetJSON loads a cached value into dest. The bool reports a cache hit;
// cache errors are downgraded to misses so the DB path always works.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).WithField("key", key).Warn("Redis read failed")
		}
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.rdb.Del(ctx, key)
		return false
	}

	return true
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to marshal cache entry")
		return
	}

	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Redis write failed")
	}
}

func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("Redis delete failed")
	}
}

// VendorProfileKey is the cache key for a vendor's profile payload.
func VendorProfileKey(vendorID string) string {
	return "comparison:profile:" + vendorID
}
