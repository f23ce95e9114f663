package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/logger"
	"vendorhub/backend/internal/metrics"
	"vendorhub/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Forecaster is the demand forecasting collaborator; forecast.Engine
// satisfies it.
type Forecaster interface {
	Forecast(ctx context.Context, productID string, days int) (*domain.Forecast, error)
	ForecastBatch(ctx context.Context, productIDs []string, days int) (*domain.ForecastBatch, error)
	Models(ctx context.Context) (*domain.ModelCatalog, error)
	Metrics(ctx context.Context) (map[string]any, error)
}

type Service struct {
	repo       store.Repository
	forecaster Forecaster
	metrics    *metrics.Metrics
	log        *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// New wires the business rules to a repository. loc decides where calendar
// days start for analytics and date filters; nil means UTC.
func New(repo store.Repository, forecaster Forecaster, m *metrics.Metrics, log *zap.Logger, loc *time.Location) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Service{
		repo:       repo,
		forecaster: forecaster,
		metrics:    m,
		log:        log,
		loc:        loc,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) vendorID(ctx context.Context) (string, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.UserID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}
	return actor.UserID, nil
}

func (s *Service) reqLog(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.log)
}

// clock is the current instant in the service location, so calendar days
// derived from it match TIMEZONE.
func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) today() domain.Date {
	return domain.NewDate(s.clock())
}

// dayBounds returns the first and last instant of a calendar day in the
// service location, both in UTC.
func (s *Service) dayBounds(d domain.Date) (time.Time, time.Time) {
	start := d.StartIn(s.loc)
	end := d.AddDays(1).StartIn(s.loc).Add(-time.Nanosecond)
	return start.UTC(), end.UTC()
}

// translate turns store sentinels into API errors. notFound is the message
// used when the row is missing or owned by someone else.
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("Resource already exists")
	}
	return err
}

func (s *Service) ownedProduct(ctx context.Context, vendorID string, productID string) (*domain.Product, error) {
	if productID == "" {
		return nil, apperr.Validation("Missing required fields")
	}
	product, err := s.repo.GetProduct(ctx, vendorID, productID)
	if err != nil {
		return nil, translate(err, "Product not found")
	}
	return product, nil
}

func refOf(p domain.Product) *domain.ProductRef {
	return &domain.ProductRef{ID: p.ID, Name: p.Name, Category: p.Category, Unit: p.Unit, CostPrice: p.CostPrice}
}
