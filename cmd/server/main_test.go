package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"vendorhub/backend/internal/config"
	"vendorhub/backend/internal/store/memory"
	"vendorhub/backend/internal/store/sqlstore"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenRepositoryFallsBackToMemory(t *testing.T) {
	t.Setenv("SEED_VENDOR_EMAIL", "seed@example.com")
	t.Setenv("SEED_VENDOR_PASSWORD", "Seedling2026")

	backend, err := openRepository(context.Background(), config.Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := backend.repo.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", backend.repo)
	}
	if backend.ping != nil || len(backend.closers) != 0 {
		t.Fatalf("memory store needs no readiness check or closers")
	}
}

func TestOpenRepositoryUsesSQLitePath(t *testing.T) {
	backend, err := openRepository(context.Background(), config.Config{SQLitePath: ":memory:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		for _, closeFn := range backend.closers {
			_ = closeFn()
		}
	})
	if _, ok := backend.repo.(*sqlstore.Store); !ok {
		t.Fatalf("expected sql store, got %T", backend.repo)
	}
	if err := backend.ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
