package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
)

const (
	defaultForecastDays   = 7
	maxForecastDays       = 30
	maxBatchProducts      = 50
	defaultPredictionRows = 100
)

func (s *Service) RequestForecast(ctx context.Context, req domain.ForecastRequest) (*domain.Forecast, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	days, err := forecastDays(req.Days)
	if err != nil {
		return nil, err
	}
	product, err := s.ownedProduct(ctx, vendorID, strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, err
	}
	if s.forecaster == nil {
		return nil, apperr.New(apperr.KindUpstream, "Forecast service not configured")
	}

	forecast, err := s.forecaster.Forecast(ctx, product.ID, days)
	if err != nil {
		return nil, err
	}
	s.persistForecast(ctx, vendorID, product.ID, forecast)
	return forecast, nil
}

func (s *Service) BatchForecast(ctx context.Context, req domain.BatchForecastRequest) (*domain.ForecastBatch, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	days, err := forecastDays(req.Days)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(req.ProductIDs))
	seen := make(map[string]struct{}, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 || len(ids) > maxBatchProducts {
		return nil, apperr.Validation("productIds must contain between 1 and 50 ids")
	}
	for _, id := range ids {
		if _, err := s.ownedProduct(ctx, vendorID, id); err != nil {
			return nil, err
		}
	}
	if s.forecaster == nil {
		return nil, apperr.New(apperr.KindUpstream, "Forecast service not configured")
	}

	batch, err := s.forecaster.ForecastBatch(ctx, ids, days)
	if err != nil {
		return nil, err
	}
	for i := range batch.Predictions {
		forecast := &batch.Predictions[i]
		if _, ok := seen[forecast.ProductID]; !ok {
			continue
		}
		s.persistForecast(ctx, vendorID, forecast.ProductID, forecast)
	}
	return batch, nil
}

func (s *Service) ProductPredictions(ctx context.Context, productID string) ([]domain.Prediction, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.ownedProduct(ctx, vendorID, strings.TrimSpace(productID))
	if err != nil {
		return nil, err
	}
	return s.repo.ListPredictions(ctx, vendorID, product.ID, 0)
}

func (s *Service) VendorPredictions(ctx context.Context, limit int) ([]domain.Prediction, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPredictionRows
	}
	return s.repo.ListPredictions(ctx, vendorID, "", limit)
}

func (s *Service) ForecastModels(ctx context.Context) (*domain.ModelCatalog, error) {
	if s.forecaster == nil {
		return nil, apperr.New(apperr.KindUpstream, "Forecast service not configured")
	}
	return s.forecaster.Models(ctx)
}

func (s *Service) ForecastMetrics(ctx context.Context) (map[string]any, error) {
	if s.forecaster == nil {
		return nil, apperr.New(apperr.KindUpstream, "Forecast service not configured")
	}
	return s.forecaster.Metrics(ctx)
}

// persistForecast replaces the product's stored predictions from today on.
// Failures are logged; the caller still gets the forecast.
func (s *Service) persistForecast(ctx context.Context, vendorID string, productID string, forecast *domain.Forecast) {
	log := s.reqLog(ctx).With(zap.String("product_id", productID))
	now := s.now().UTC()

	rows := make([]domain.Prediction, 0, len(forecast.Predictions))
	for _, point := range forecast.Predictions {
		day, err := domain.ParseDate(point.Date)
		if err != nil {
			log.Warn("skipping forecast point with bad date", zap.String("date", point.Date))
			continue
		}
		rows = append(rows, domain.Prediction{
			ID:                uuid.NewString(),
			ProductID:         productID,
			VendorID:          vendorID,
			ForecastDate:      day,
			PredictedQuantity: decimal.NewFromFloat(point.PredictedQuantity).Round(domain.QuantityPlaces),
			ConfidenceLevel:   decimal.NewFromFloat(point.ConfidenceLevel).Round(4),
			ModelUsed:         forecast.ModelUsed,
			Recommendations:   domain.StringList(forecast.Recommendations),
			CreatedAt:         now,
		})
	}

	if err := s.repo.ReplacePredictions(ctx, vendorID, productID, s.today(), rows); err != nil {
		log.Warn("failed to store predictions", zap.Error(err))
	}
}

func forecastDays(days int) (int, error) {
	if days == 0 {
		return defaultForecastDays, nil
	}
	if days < 1 || days > maxForecastDays {
		return 0, apperr.Validation("Days must be between 1 and 30")
	}
	return days, nil
}
