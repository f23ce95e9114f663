package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vendorhub/backend/internal/cache"
	"vendorhub/backend/internal/config"
	"vendorhub/backend/internal/forecast"
	"vendorhub/backend/internal/httpapi"
	"vendorhub/backend/internal/logger"
	"vendorhub/backend/internal/metrics"
	"vendorhub/backend/internal/service"
	"vendorhub/backend/internal/store"
	"vendorhub/backend/internal/store/memory"
	"vendorhub/backend/internal/store/sqlstore"
)

const serviceName = "vendorhub-backend"

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		ServiceName: serviceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal("invalid security configuration", zap.Error(err))
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("repository unavailable; refusing to start with in-memory fallback", zap.Error(err))
	}
	closers := backend.closers

	cacheStore := cache.ForecastCache(cache.NoopForecastCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisForecastCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop cache", zap.Error(err))
			_ = redisCache.Close()
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		log.Info("cache: noop")
	}

	m := metrics.New(serviceName)
	mlClient := forecast.NewClient(cfg.MLServiceURL, cfg.MLTimeout(), log)
	engine := forecast.NewEngine(mlClient, cacheStore, cfg.ForecastCacheTTL(), m, log)

	svc := service.New(backend.repo, engine, m, log, loc)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.TokenTTL(), backend.repo, httpapi.WithAuthMetrics(m))
	api := httpapi.New(svc, auth, m, log, cfg.AllowedOrigin, cfg.IsDevelopment())
	if backend.ping != nil {
		api.WithReadiness(backend.ping)
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("vendorhub backend listening",
			zap.String("addr", cfg.Address()),
			zap.String("env", cfg.AppEnv),
			zap.String("ml_service", cfg.MLServiceURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close error", zap.Error(err))
		}
	}

	log.Info("server stopped")
}

type repository struct {
	repo    store.Repository
	ping    func(context.Context) error
	closers []func() error
}

// openRepository picks Postgres when DATABASE_URL is set, embedded SQLite
// when SQLITE_PATH is set, and the seeded memory store otherwise.
func openRepository(ctx context.Context, cfg config.Config, log *zap.Logger) (repository, error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := sqlstore.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return repository{}, fmt.Errorf("postgres: %w", err)
		}
		log.Info("repository: postgres")
		return repository{repo: pg, ping: pg.Ping, closers: []func() error{pg.Close}}, nil
	case cfg.SQLitePath != "":
		lite, err := sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return repository{}, fmt.Errorf("sqlite: %w", err)
		}
		log.Info("repository: sqlite", zap.String("path", cfg.SQLitePath))
		return repository{repo: lite, ping: lite.Ping, closers: []func() error{lite.Close}}, nil
	default:
		mem, err := memory.NewSeeded(log)
		if err != nil {
			return repository{}, fmt.Errorf("memory: %w", err)
		}
		log.Info("repository: in-memory")
		return repository{repo: mem}, nil
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
