package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

// lockProduct reads the product row inside tx and holds it until the
// transaction ends.
func (s *Store) lockProduct(ctx context.Context, tx *sqlx.Tx, vendorID string, productID string) (*domain.Product, error) {
	var p domain.Product
	query := tx.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ? AND vendor_id = ?` + s.forUpdate())
	if err := tx.GetContext(ctx, &p, query, productID, vendorID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) setQuantity(ctx context.Context, tx *sqlx.Tx, product *domain.Product, qty decimal.Decimal, at time.Time) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`), qty, at.UTC(), product.ID)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	product.Quantity = qty
	product.UpdatedAt = at.UTC()
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, adj domain.InventoryAdjustment) (*domain.InventoryAdjustment, *domain.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	product, err := s.lockProduct(ctx, tx, adj.VendorID, adj.ProductID)
	if err != nil {
		return nil, nil, err
	}
	next, err := domain.ApplyAdjustment(product.Quantity, adj.Type, adj.Quantity)
	if err != nil {
		return nil, nil, err
	}
	if err := s.setQuantity(ctx, tx, product, next, adj.CreatedAt); err != nil {
		return nil, nil, err
	}

	adj.CreatedAt = adj.CreatedAt.UTC()
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO inventory_adjustments (id, product_id, vendor_id, type, quantity, reason, notes, created_at)
		VALUES (:id, :product_id, :vendor_id, :type, :quantity, :reason, :notes, :created_at)
	`, adj); err != nil {
		return nil, nil, fmt.Errorf("insert adjustment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &adj, product, nil
}

type adjustmentRow struct {
	domain.InventoryAdjustment
	ProductName sql.NullString `db:"product_name"`
	ProductUnit sql.NullString `db:"product_unit"`
}

func (s *Store) ListAdjustments(ctx context.Context, vendorID string, productID string) ([]domain.InventoryAdjustment, error) {
	var b strings.Builder
	args := []any{vendorID}
	b.WriteString(`
		SELECT a.id, a.product_id, a.vendor_id, a.type, a.quantity, a.reason, a.notes, a.created_at,
			p.name AS product_name, p.unit AS product_unit
		FROM inventory_adjustments a
		LEFT JOIN products p ON p.id = a.product_id
		WHERE a.vendor_id = ?`)
	if productID != "" {
		b.WriteString(` AND a.product_id = ?`)
		args = append(args, productID)
	}
	b.WriteString(` ORDER BY a.created_at DESC, a.id DESC`)

	var rows []adjustmentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}

	out := make([]domain.InventoryAdjustment, 0, len(rows))
	for _, row := range rows {
		adj := row.InventoryAdjustment
		if row.ProductName.Valid {
			adj.Product = &domain.ProductRef{ID: adj.ProductID, Name: row.ProductName.String, Unit: row.ProductUnit.String}
		}
		out = append(out, adj)
	}
	return out, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, *domain.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	product, err := s.lockProduct(ctx, tx, sale.VendorID, sale.ProductID)
	if err != nil {
		return nil, nil, err
	}
	next, err := domain.ApplySale(product.Quantity, sale.Quantity)
	if err != nil {
		return nil, nil, err
	}
	if err := s.setQuantity(ctx, tx, product, next, sale.CreatedAt); err != nil {
		return nil, nil, err
	}

	sale.SoldAt = sale.SoldAt.UTC()
	sale.CreatedAt = sale.CreatedAt.UTC()
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO sales (id, vendor_id, product_id, quantity, unit_price, total, sold_at, created_at)
		VALUES (:id, :vendor_id, :product_id, :quantity, :unit_price, :total, :sold_at, :created_at)
	`, sale); err != nil {
		return nil, nil, fmt.Errorf("insert sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &sale, product, nil
}

type saleRow struct {
	domain.Sale
	ProductName      sql.NullString      `db:"product_name"`
	ProductCategory  sql.NullString      `db:"product_category"`
	ProductUnit      sql.NullString      `db:"product_unit"`
	ProductCostPrice decimal.NullDecimal `db:"product_cost_price"`
}

func (s *Store) ListSales(ctx context.Context, vendorID string, filter store.SaleFilter) ([]domain.Sale, error) {
	var b strings.Builder
	args := []any{vendorID}
	b.WriteString(`
		SELECT s.id, s.vendor_id, s.product_id, s.quantity, s.unit_price, s.total, s.sold_at, s.created_at,
			p.name AS product_name, p.category AS product_category, p.unit AS product_unit,
			p.cost_price AS product_cost_price
		FROM sales s
		LEFT JOIN products p ON p.id = s.product_id
		WHERE s.vendor_id = ?`)
	if filter.ProductID != "" {
		b.WriteString(` AND s.product_id = ?`)
		args = append(args, filter.ProductID)
	}
	if filter.From != nil {
		b.WriteString(` AND s.sold_at >= ?`)
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		b.WriteString(` AND s.sold_at <= ?`)
		args = append(args, filter.To.UTC())
	}
	b.WriteString(` ORDER BY s.sold_at DESC, s.id DESC`)

	var rows []saleRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	out := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		sale := row.Sale
		if row.ProductName.Valid {
			sale.Product = &domain.ProductRef{
				ID:        sale.ProductID,
				Name:      row.ProductName.String,
				Category:  row.ProductCategory.String,
				Unit:      row.ProductUnit.String,
				CostPrice: row.ProductCostPrice.Decimal,
			}
		}
		out = append(out, sale)
	}
	return out, nil
}
