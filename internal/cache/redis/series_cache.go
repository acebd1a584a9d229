package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alanyoungcy/retailboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// defaultSeriesTTL bounds how long a fetched time series is served before the
// upstream is consulted again.
const defaultSeriesTTL = 10 * time.Minute

// SeriesCache implements domain.SeriesCache using Redis string keys with
// JSON-serialized point slices.
//
// Key schema:
//
//	series:{key} - JSON array of price points
//
// Callers build the key from the series identity (e.g. "prob:{tokenID}" or
// "stock:{symbol}:{from}:{to}") so distinct queries never collide.
type SeriesCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeriesCache creates a SeriesCache backed by the given Client. A ttl of
// zero selects the default of 10 minutes.
func NewSeriesCache(c *Client, ttl time.Duration) *SeriesCache {
	if ttl <= 0 {
		ttl = defaultSeriesTTL
	}
	return &SeriesCache{rdb: c.Underlying(), ttl: ttl}
}

func seriesKey(key string) string { return "series:" + key }

// Set stores a point series under the given key with the configured TTL.
func (sc *SeriesCache) Set(ctx context.Context, key string, points []domain.PricePoint) error {
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("redis: marshal series %s: %w", key, err)
	}
	if err := sc.rdb.Set(ctx, seriesKey(key), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set series %s: %w", key, err)
	}
	return nil
}

// Get retrieves a point series by key.
// It returns domain.ErrNotFound when the key does not exist or has expired.
func (sc *SeriesCache) Get(ctx context.Context, key string) ([]domain.PricePoint, error) {
	data, err := sc.rdb.Get(ctx, seriesKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get series %s: %w", key, err)
	}

	var points []domain.PricePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("redis: unmarshal series %s: %w", key, err)
	}
	return points, nil
}

// Compile-time interface check.
var _ domain.SeriesCache = (*SeriesCache)(nil)
