package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smokyabdulrahman/prayer-locator/internal/api"
	"github.com/smokyabdulrahman/prayer-locator/internal/geo"
)

const (
	redisPrefix     = "prayer-locator:"
	redisTimingsTTL = 48 * time.Hour
)

// RedisStore keeps cache entries in Redis with server-side expiry.
type RedisStore struct {
	rdb *redis.Client
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and checks the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cannot reach redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func timingsRedisKey(k TimingsKey) string {
	return redisPrefix + "timings:" + k.hash()
}

const geoRedisKey = redisPrefix + "geo"

func (s *RedisStore) LoadTimings(ctx context.Context, k TimingsKey) *TimingsEntry {
	data, err := s.rdb.Get(ctx, timingsRedisKey(k)).Bytes()
	if err != nil {
		return nil
	}
	var entry TimingsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if entry.Date != k.day() {
		return nil
	}
	return &entry
}

func (s *RedisStore) SaveTimings(ctx context.Context, k TimingsKey, resp *api.Response) error {
	data, err := json.Marshal(newTimingsEntry(k, resp))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.rdb.Set(ctx, timingsRedisKey(k), data, redisTimingsTTL).Err(); err != nil {
		return fmt.Errorf("failed to store timings in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadGeo(ctx context.Context) *geo.Location {
	data, err := s.rdb.Get(ctx, geoRedisKey).Bytes()
	if err != nil {
		return nil
	}
	var entry GeoCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	return &entry.Location
}

func (s *RedisStore) SaveGeo(ctx context.Context, loc *geo.Location) error {
	data, err := json.Marshal(GeoCacheEntry{Location: *loc, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal geo cache: %w", err)
	}
	if err := s.rdb.Set(ctx, geoRedisKey, data, geoTTL).Err(); err != nil {
		return fmt.Errorf("failed to store geolocation in redis: %w", err)
	}
	return nil
}
