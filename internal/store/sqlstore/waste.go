package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

const wasteSelect = `
	SELECT w.id, w.product_id, w.vendor_id, w.quantity, w.reason, w.waste_date, w.notes,
		w.cost_impact, w.created_at,
		p.name AS product_name, p.category AS product_category, p.unit AS product_unit,
		p.cost_price AS product_cost_price
	FROM waste_logs w
	LEFT JOIN products p ON p.id = w.product_id`

type wasteRow struct {
	domain.WasteLog
	ProductName      sql.NullString      `db:"product_name"`
	ProductCategory  sql.NullString      `db:"product_category"`
	ProductUnit      sql.NullString      `db:"product_unit"`
	ProductCostPrice decimal.NullDecimal `db:"product_cost_price"`
}

func (r wasteRow) toDomain() domain.WasteLog {
	entry := r.WasteLog
	if r.ProductName.Valid {
		entry.Product = &domain.ProductRef{
			ID:        entry.ProductID,
			Name:      r.ProductName.String,
			Category:  r.ProductCategory.String,
			Unit:      r.ProductUnit.String,
			CostPrice: r.ProductCostPrice.Decimal,
		}
	}
	return entry
}

func (s *Store) CreateWasteLog(ctx context.Context, entry domain.WasteLog) (*domain.WasteLog, error) {
	entry.CreatedAt = entry.CreatedAt.UTC()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO waste_logs (id, product_id, vendor_id, quantity, reason, waste_date, notes, cost_impact, created_at)
		VALUES (:id, :product_id, :vendor_id, :quantity, :reason, :waste_date, :notes, :cost_impact, :created_at)
	`, entry)
	if err != nil {
		return nil, fmt.Errorf("insert waste log: %w", err)
	}
	return &entry, nil
}

func (s *Store) GetWasteLog(ctx context.Context, vendorID string, id string) (*domain.WasteLog, error) {
	var row wasteRow
	query := s.db.Rebind(wasteSelect + ` WHERE w.id = ? AND w.vendor_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id, vendorID); err != nil {
		return nil, notFound(err)
	}
	entry := row.toDomain()
	return &entry, nil
}

func (s *Store) ListWasteLogs(ctx context.Context, vendorID string, filter store.WasteFilter) ([]domain.WasteLog, int, error) {
	var where strings.Builder
	args := []any{vendorID}
	where.WriteString(` WHERE w.vendor_id = ?`)
	if filter.ProductID != "" {
		where.WriteString(` AND w.product_id = ?`)
		args = append(args, filter.ProductID)
	}
	if filter.Reason != "" {
		where.WriteString(` AND w.reason = ?`)
		args = append(args, filter.Reason)
	}
	if filter.From != nil {
		where.WriteString(` AND w.waste_date >= ?`)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where.WriteString(` AND w.waste_date <= ?`)
		args = append(args, *filter.To)
	}

	var total int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM waste_logs w` + where.String())
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count waste logs: %w", err)
	}

	query := wasteSelect + where.String() + ` ORDER BY w.waste_date DESC, w.created_at DESC, w.id DESC`
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	case filter.Offset > 0 && s.dialect == dialectSQLite:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	case filter.Offset > 0:
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	var rows []wasteRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list waste logs: %w", err)
	}
	out := make([]domain.WasteLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (s *Store) DeleteWasteLog(ctx context.Context, vendorID string, id string) error {
	return requireRow(s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM waste_logs WHERE id = ? AND vendor_id = ?`), id, vendorID))
}
