package sqlstore

import "strings"

// schema returns idempotent DDL. Decimals are NUMERIC on Postgres and TEXT on
// SQLite, where text keeps them exact.
func schema(d dialect) []string {
	money, qty, ratio, ts := "NUMERIC(14,2)", "NUMERIC(14,3)", "NUMERIC(6,4)", "TIMESTAMPTZ"
	if d == dialectSQLite {
		money, qty, ratio, ts = "TEXT", "TEXT", "TEXT", "TIMESTAMP"
	}
	r := strings.NewReplacer("{money}", money, "{qty}", qty, "{ratio}", ratio, "{ts}", ts)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			business_name TEXT,
			location TEXT,
			phone TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at {ts} NOT NULL,
			updated_at {ts} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT,
			cost_price {money} NOT NULL,
			selling_price {money} NOT NULL,
			quantity {qty} NOT NULL,
			unit TEXT NOT NULL,
			expiry_date DATE,
			sku TEXT UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at {ts} NOT NULL,
			updated_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_vendor ON products (vendor_id)`,
		`CREATE TABLE IF NOT EXISTS inventory_adjustments (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			quantity {qty} NOT NULL,
			reason TEXT NOT NULL,
			notes TEXT,
			created_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_adjustments_vendor ON inventory_adjustments (vendor_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity {qty} NOT NULL,
			unit_price {money} NOT NULL,
			total {money} NOT NULL,
			sold_at {ts} NOT NULL,
			created_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_vendor_sold_at ON sales (vendor_id, sold_at)`,
		`CREATE TABLE IF NOT EXISTS waste_logs (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			quantity {qty} NOT NULL,
			reason TEXT NOT NULL,
			waste_date DATE NOT NULL,
			notes TEXT,
			cost_impact {money} NOT NULL,
			created_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_vendor_date ON waste_logs (vendor_id, waste_date)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL,
			forecast_date DATE NOT NULL,
			predicted_quantity {qty} NOT NULL,
			confidence_level {ratio} NOT NULL,
			model_used TEXT NOT NULL,
			recommendations TEXT NOT NULL DEFAULT '[]',
			created_at {ts} NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_product ON predictions (vendor_id, product_id, forecast_date)`,
	}
	for i, stmt := range stmts {
		stmts[i] = r.Replace(stmt)
	}
	return stmts
}
