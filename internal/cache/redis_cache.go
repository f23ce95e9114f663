package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"vendorhub/backend/internal/domain"
)

const redisKeyPrefix = "vendorhub:"

// cachedForecast is the stored form of a forecast. ProductID is repeated so a
// payload written under the wrong key is rejected on read.
type cachedForecast struct {
	ProductID string           `json:"product_id"`
	CachedAt  time.Time        `json:"cached_at"`
	Forecast  *domain.Forecast `json:"forecast"`
}

// RedisForecastCache keeps forecasts as JSON strings under a namespaced key
// with the TTL handed in by the engine.
type RedisForecastCache struct {
	client *redis.Client
}

func NewRedisForecastCache(addr string, password string, db int) *RedisForecastCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisForecastCache{client: client}
}

func (c *RedisForecastCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisForecastCache) Close() error {
	return c.client.Close()
}

func (c *RedisForecastCache) Get(ctx context.Context, key string) (*domain.Forecast, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	forecast, err := decodeForecast(raw)
	if err != nil {
		// Unreadable entries are dropped so the next call repopulates them.
		_ = c.client.Del(ctx, redisKeyPrefix+key).Err()
		return nil, false, err
	}
	return forecast, true, nil
}

func (c *RedisForecastCache) Set(ctx context.Context, key string, value *domain.Forecast, ttl time.Duration) error {
	payload, err := encodeForecast(value, time.Now().UTC())
	if err != nil || payload == nil {
		return err
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// encodeForecast returns nil for a nil forecast; there is nothing to cache.
func encodeForecast(forecast *domain.Forecast, at time.Time) ([]byte, error) {
	if forecast == nil {
		return nil, nil
	}
	return json.Marshal(cachedForecast{
		ProductID: forecast.ProductID,
		CachedAt:  at,
		Forecast:  forecast,
	})
}

func decodeForecast(raw []byte) (*domain.Forecast, error) {
	var entry cachedForecast
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached forecast: %w", err)
	}
	if entry.Forecast == nil || entry.Forecast.ProductID != entry.ProductID {
		return nil, errors.New("decode cached forecast: malformed entry")
	}
	return entry.Forecast, nil
}
