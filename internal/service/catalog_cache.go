package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
)

// NoCatalogVersion is returned by Get when the version is unknown; Set ignores it.
const NoCatalogVersion int64 = -1

// RedisCatalogCache stores listing JSON under a version number. Invalidate
// bumps the version so stale entries are never read again and expire on TTL.
type RedisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisCatalogCache creates a new RedisCatalogCache.
func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCatalogCache {
	return &RedisCatalogCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "catalog_cache").Logger(),
	}
}

func (c *RedisCatalogCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.CatalogVersionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get decodes a cached entry into dst and reports whether it was found. The
// returned version is the one the lookup ran against; pass it to Set so rows
// loaded after a miss are never stored under a newer version.
func (c *RedisCatalogCache) Get(ctx context.Context, name string, dst interface{}) (int64, bool) {
	v, err := c.version(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("catalog version lookup failed")
		return NoCatalogVersion, false
	}
	raw, err := c.rdb.Get(ctx, config.CacheKey.CatalogEntryKey(v, name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("entry", name).Msg("catalog cache read failed")
		}
		return v, false
	}
	return v, json.Unmarshal(raw, dst) == nil
}

// Set stores v under the given version. Failures are logged only.
func (c *RedisCatalogCache) Set(ctx context.Context, version int64, name string, v interface{}) {
	if version == NoCatalogVersion {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.CatalogEntryKey(version, name), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("entry", name).Msg("catalog cache write failed")
	}
}

// Invalidate drops every cached listing.
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, config.CacheKey.CatalogVersionKey()).Err()
}

// NopCatalogCache never caches.
type NopCatalogCache struct{}

func (NopCatalogCache) Get(context.Context, string, interface{}) (int64, bool) {
	return NoCatalogVersion, false
}
func (NopCatalogCache) Set(context.Context, int64, string, interface{}) {}
func (NopCatalogCache) Invalidate(context.Context) error                 { return nil }
