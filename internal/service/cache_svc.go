package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/vidsource/internal/model"
	"github.com/mathieu-neron/vidsource/pkg/hash"
)

// DefaultSearchCacheTTL applies when the configured TTL is not positive.
const DefaultSearchCacheTTL = 5 * time.Minute

// CacheService provides a Redis cache-aside layer for search responses.
type CacheService struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string, ttl time.Duration, log zerolog.Logger) *CacheService {
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{ttl: ttl}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{ttl: ttl}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{ttl: ttl}
	}

	log.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, ttl: ttl}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// Enabled reports whether a Redis connection is in use.
func (c *CacheService) Enabled() bool {
	return c.rdb != nil
}

// GetSearch returns cached results. ok is false on a miss or when disabled.
func (c *CacheService) GetSearch(ctx context.Context, query, source string) (videos []model.VideoSummary, ok bool, err error) {
	if c.rdb == nil {
		return nil, false, nil
	}
	data, err := c.rdb.Get(ctx, searchKey(query, source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, false, err
	}
	return videos, true, nil
}

// SetSearch stores results for the configured TTL.
func (c *CacheService) SetSearch(ctx context.Context, query, source string, videos []model.VideoSummary) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(videos)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, searchKey(query, source), b, c.ttl).Err()
}

// InvalidateSearch removes one cached response.
func (c *CacheService) InvalidateSearch(ctx context.Context, query, source string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, searchKey(query, source)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func searchKey(query, source string) string {
	return "search:" + source + ":" + hash.Prefix(query, 24)
}
