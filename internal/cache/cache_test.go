package cache

import (
	"context"
	"testing"
	"time"

	"vendorhub/backend/internal/domain"
)

func TestNoopForecastCacheAlwaysMisses(t *testing.T) {
	var c ForecastCache = NoopForecastCache{}
	if err := c.Set(context.Background(), "forecast:p1:7", &domain.Forecast{ProductID: "p1"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(context.Background(), "forecast:p1:7")
	if err != nil || ok || got != nil {
		t.Fatalf("expected miss, got %v %v %v", got, ok, err)
	}
}

func TestForecastEntryRoundTrip(t *testing.T) {
	at := time.Date(2026, 4, 15, 8, 0, 0, 0, time.UTC)
	in := &domain.Forecast{
		ProductID:   "p1",
		ModelUsed:   "LinearRegression",
		Predictions: []domain.ForecastPoint{{Date: "2026-04-16", PredictedQuantity: 4.5, ConfidenceLevel: 0.8}},
	}

	raw, err := encodeForecast(in, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeForecast(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ProductID != "p1" || out.ModelUsed != "LinearRegression" || len(out.Predictions) != 1 {
		t.Fatalf("unexpected forecast %+v", out)
	}
}

func TestEncodeNilForecastStoresNothing(t *testing.T) {
	raw, err := encodeForecast(nil, time.Now())
	if err != nil || raw != nil {
		t.Fatalf("expected nothing to store, got %q %v", raw, err)
	}
}

func TestDecodeRejectsMalformedEntries(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":         `{"forecast":`,
		"missing forecast": `{"product_id":"p1","cached_at":"2026-04-15T08:00:00Z"}`,
		"wrong product":    `{"product_id":"p1","forecast":{"product_id":"p2"}}`,
		"bare forecast":    `{"product_id":"p1","model_used":"LinearRegression"}`,
	} {
		if _, err := decodeForecast([]byte(raw)); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}
