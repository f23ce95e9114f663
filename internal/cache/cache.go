package cache

import (
	"context"
	"time"

	"vendorhub/backend/internal/domain"
)

// ForecastCache stores ML forecasts keyed by product and horizon. A miss is
// (nil, false, nil); errors are reported so callers can log and fall through.
type ForecastCache interface {
	Get(ctx context.Context, key string) (*domain.Forecast, bool, error)
	Set(ctx context.Context, key string, value *domain.Forecast, ttl time.Duration) error
}

type NoopForecastCache struct{}

func (NoopForecastCache) Get(_ context.Context, _ string) (*domain.Forecast, bool, error) {
	return nil, false, nil
}

func (NoopForecastCache) Set(_ context.Context, _ string, _ *domain.Forecast, _ time.Duration) error {
	return nil
}
