package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/apperr"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApplyAdjustment(t *testing.T) {
	cases := []struct {
		name    string
		current string
		kind    string
		qty     string
		want    string
		wantErr string
	}{
		{"add", "10", AdjustmentAdd, "2.5", "12.5", ""},
		{"remove", "10", AdjustmentRemove, "4", "6", ""},
		{"remove to zero", "10", AdjustmentRemove, "10", "0", ""},
		{"remove beyond stock", "5", AdjustmentRemove, "5.001", "5", "Cannot remove more quantity than available"},
		{"correction to zero", "42", AdjustmentCorrection, "0", "0", ""},
		{"correction up", "1", AdjustmentCorrection, "99.125", "99.125", ""},
		{"add zero", "1", AdjustmentAdd, "0", "1", "Quantity must be > 0"},
		{"negative correction", "1", AdjustmentCorrection, "-1", "1", "Quantity must be >= 0"},
		{"unknown type", "1", "steal", "1", "1", "Invalid adjustment type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ApplyAdjustment(d(tc.current), tc.kind, d(tc.qty))
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("expected error %q, got %v", tc.wantErr, err)
				}
				if !apperr.Is(err, apperr.KindValidation) {
					t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(d(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestApplySale(t *testing.T) {
	next, err := ApplySale(d("100"), d("30"))
	if err != nil || !next.Equal(d("70")) {
		t.Fatalf("expected 70, got %s (%v)", next, err)
	}

	next, err = ApplySale(d("5"), d("10"))
	if err == nil || err.Error() != "Insufficient stock" {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if !next.Equal(d("5")) {
		t.Fatalf("expected stock to stay at 5, got %s", next)
	}
}

func TestSaleTotalRoundsToCents(t *testing.T) {
	if got := SaleTotal(d("30"), d("15")); !got.Equal(d("450.00")) {
		t.Fatalf("expected 450.00, got %s", got)
	}
	if got := SaleTotal(d("0.333"), d("1.99")); !got.Equal(d("0.66")) {
		t.Fatalf("expected 0.66, got %s", got)
	}
}

func TestMarginAndExpiry(t *testing.T) {
	if got := Margin(d("10"), d("15")); !got.Equal(d("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
	if got := Margin(d("0"), d("15")); !got.IsZero() {
		t.Fatalf("expected zero margin on zero cost, got %s", got)
	}

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	soon := NewDate(now.AddDate(0, 0, 7))
	later := NewDate(now.AddDate(0, 0, 8))
	today := NewDate(now)
	if !IsExpiringSoon(&soon, now) {
		t.Fatalf("expected 7 days out to be expiring soon")
	}
	if IsExpiringSoon(&later, now) || IsExpiringSoon(&today, now) || IsExpiringSoon(nil, now) {
		t.Fatalf("expected only 1..7 days out to be expiring soon")
	}
}

func TestPercentChangeZeroGuard(t *testing.T) {
	if got := PercentChange(d("100"), decimal.Zero); got != 0 {
		t.Fatalf("expected 0 on zero baseline, got %v", got)
	}
	if got := PercentChange(d("150"), d("100")); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := PercentChange(d("1"), d("3")); got != -66.7 {
		t.Fatalf("expected -66.7, got %v", got)
	}
}

func TestDateJSONAndScan(t *testing.T) {
	var got struct {
		When Date `json:"when"`
	}
	if err := json.Unmarshal([]byte(`{"when":"2026-02-03"}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.When.String() != "2026-02-03" {
		t.Fatalf("expected 2026-02-03, got %s", got.When)
	}
	payload, _ := json.Marshal(got)
	if string(payload) != `{"when":"2026-02-03"}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var scanned Date
	if err := scanned.Scan("2026-02-03 00:00:00+00:00"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !scanned.Equal(got.When.Time) {
		t.Fatalf("expected scanned date to equal parsed date")
	}

	if _, err := ParseDate("03/02/2026"); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
}

func TestStringListRoundTripThroughDriverValue(t *testing.T) {
	value, err := StringList{"restock", "promote"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var out StringList
	if err := out.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[1] != "promote" {
		t.Fatalf("unexpected list %v", out)
	}
}
