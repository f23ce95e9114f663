package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log, err := New(Config{Level: "not-a-level", Environment: "production", ServiceName: "vendorhub"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !log.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info level to be enabled")
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level to be disabled")
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewNop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger when context is empty")
	}

	scoped := zap.NewExample()
	ctx := WithContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatalf("expected scoped logger from context")
	}

	if FromContext(context.Background(), nil) == nil {
		t.Fatalf("expected a no-op logger, got nil")
	}
}
