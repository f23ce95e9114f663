package store

import "strings"

var productSortColumns = map[string]string{
	"createdAt":    "created_at",
	"created_at":   "created_at",
	"name":         "name",
	"category":     "category",
	"costPrice":    "cost_price",
	"sellingPrice": "selling_price",
	"quantity":     "quantity",
	"expiryDate":   "expiry_date",
}

// SortColumn returns the whitelisted column for SortBy, defaulting to
// created_at. User input never reaches SQL directly.
func (f ProductFilter) SortColumn() string {
	if col, ok := productSortColumns[strings.TrimSpace(f.SortBy)]; ok {
		return col
	}
	return "created_at"
}

func (f ProductFilter) Descending() bool {
	return !strings.EqualFold(strings.TrimSpace(f.SortOrder), "ASC")
}
