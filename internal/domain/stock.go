package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/apperr"
)

const (
	QuantityPlaces = 3
	MoneyPlaces    = 2
)

var hundred = decimal.NewFromInt(100)

func IsAdjustmentType(kind string) bool {
	switch kind {
	case AdjustmentAdd, AdjustmentRemove, AdjustmentCorrection:
		return true
	}
	return false
}

func IsWasteReason(reason string) bool {
	switch reason {
	case WasteExpired, WasteDamaged, WasteExcess, WasteOther:
		return true
	}
	return false
}

// ApplyAdjustment returns the stock level after applying an adjustment of the
// given kind. Add and remove are deltas; correction is an absolute value.
func ApplyAdjustment(current decimal.Decimal, kind string, qty decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case AdjustmentAdd:
		if !qty.IsPositive() {
			return current, apperr.Validation("Quantity must be > 0")
		}
		return current.Add(qty), nil
	case AdjustmentRemove:
		if !qty.IsPositive() {
			return current, apperr.Validation("Quantity must be > 0")
		}
		if qty.GreaterThan(current) {
			return current, apperr.Validation("Cannot remove more quantity than available")
		}
		return current.Sub(qty), nil
	case AdjustmentCorrection:
		if qty.IsNegative() {
			return current, apperr.Validation("Quantity must be >= 0")
		}
		return qty, nil
	}
	return current, apperr.Validation("Invalid adjustment type")
}

// ApplySale returns the stock level after selling qty units.
func ApplySale(current decimal.Decimal, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return current, apperr.Validation("Quantity must be > 0 and price must be >= 0")
	}
	if qty.GreaterThan(current) {
		return current, apperr.Validation("Insufficient stock")
	}
	return current.Sub(qty), nil
}

func SaleTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Round(MoneyPlaces)
}

func CostImpact(qty, costPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(costPrice).Round(MoneyPlaces)
}

// Margin is the markup over cost as a percentage. A zero cost price yields 0.
func Margin(costPrice, sellingPrice decimal.Decimal) decimal.Decimal {
	if costPrice.IsZero() {
		return decimal.Zero
	}
	return sellingPrice.Sub(costPrice).Div(costPrice).Mul(hundred).Round(MoneyPlaces)
}

// DaysUntil counts whole calendar days from today to the given date.
func DaysUntil(today, date Date) int {
	return int(date.Sub(today.Time).Hours() / 24)
}

func IsExpiringSoon(expiry *Date, now time.Time) bool {
	if expiry == nil {
		return false
	}
	days := DaysUntil(NewDate(now), *expiry)
	return days > 0 && days <= 7
}

// WithDerived fills the read-only fields computed from stored values.
func (p Product) WithDerived(now time.Time) Product {
	p.Margin = Margin(p.CostPrice, p.SellingPrice)
	p.IsExpiringSoon = IsExpiringSoon(p.ExpiryDate, now)
	return p
}

// PercentChange is the change from previous to current in percent, rounded to
// one decimal place. A zero baseline yields 0.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(1).InexactFloat64()
}
