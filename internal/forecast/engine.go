package forecast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vendorhub/backend/internal/cache"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/metrics"
)

// Engine puts a TTL cache in front of the forecast client. Cache trouble is
// logged and treated as a miss.
type Engine struct {
	client   *Client
	cache    cache.ForecastCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewEngine(client *Client, cacheStore cache.ForecastCache, cacheTTL time.Duration, m *metrics.Metrics, log *zap.Logger) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopForecastCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		client:   client,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		metrics:  m,
		log:      log,
	}
}

func CacheKey(productID string, days int) string {
	return fmt.Sprintf("forecast:%s:%d", productID, days)
}

func (e *Engine) Forecast(ctx context.Context, productID string, days int) (*domain.Forecast, error) {
	key := CacheKey(productID, days)
	cached, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.log.Warn("forecast cache read failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok {
		e.metrics.ObserveForecast("cache", nil)
		return cached, nil
	}

	forecast, err := e.client.Predict(ctx, productID, days)
	e.metrics.ObserveForecast("ml", err)
	if err != nil {
		return nil, err
	}
	e.store(ctx, key, forecast)
	return forecast, nil
}

// ForecastBatch always goes to the service; each returned forecast is cached
// under its single-product key.
func (e *Engine) ForecastBatch(ctx context.Context, productIDs []string, days int) (*domain.ForecastBatch, error) {
	batch, err := e.client.PredictBatch(ctx, productIDs, days)
	e.metrics.ObserveForecast("ml_batch", err)
	if err != nil {
		return nil, err
	}
	for i := range batch.Predictions {
		forecast := batch.Predictions[i]
		e.store(ctx, CacheKey(forecast.ProductID, days), &forecast)
	}
	return batch, nil
}

func (e *Engine) Models(ctx context.Context) (*domain.ModelCatalog, error) {
	return e.client.Models(ctx)
}

func (e *Engine) Metrics(ctx context.Context) (map[string]any, error) {
	return e.client.Metrics(ctx)
}

func (e *Engine) store(ctx context.Context, key string, forecast *domain.Forecast) {
	if err := e.cache.Set(ctx, key, forecast, e.cacheTTL); err != nil {
		e.log.Warn("forecast cache write failed", zap.String("key", key), zap.Error(err))
	}
}
