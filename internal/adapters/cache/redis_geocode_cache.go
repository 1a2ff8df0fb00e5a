package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"travel-fare-service/internal/domain"
	"travel-fare-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisGeocodePrefix = "geocode:"

// RedisGeocodeCache stores place name -> coordinates as JSON strings under
// "geocode:<name>". TTL zero means entries never expire.
type RedisGeocodeCache struct {
	rdb    redis.UniversalClient
	TTL    time.Duration
	Logger *zap.Logger
}

type redisCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewRedisGeocodeCache(rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb, TTL: ttl, Logger: logger}
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (c *RedisGeocodeCache) GetMany(ctx context.Context, names []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, c.Logger, "geocode.cache.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueNames(names)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, n := range uniq {
		keys[i] = redisGeocodePrefix + n
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rc redisCoordinates
		if err := json.Unmarshal([]byte(s), &rc); err != nil {
			return nil, fmt.Errorf("get geocode cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.Coordinates{Lat: rc.Lat, Lon: rc.Lon}
	}
	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, c.Logger, "geocode.cache.PutMany")(&err)

	if c.rdb == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.rdb.TxPipeline()
	for name, coords := range results {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("insert geocode cache: empty name key")
		}
		b, err := json.Marshal(redisCoordinates{Lat: coords.Lat, Lon: coords.Lon})
		if err != nil {
			return fmt.Errorf("insert geocode cache: encode %q: %w", name, err)
		}
		pipe.Set(ctx, redisGeocodePrefix+name, b, c.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: exec: %w", err)
	}
	return nil
}
