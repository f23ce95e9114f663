package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

const productColumns = `id, vendor_id, name, category, description, cost_price, selling_price,
	quantity, unit, expiry_date, sku, is_active, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :vendor_id, :name, :category, :description, :cost_price, :selling_price,
			:quantity, :unit, :expiry_date, :sku, :is_active, :created_at, :updated_at)
	`, product)
	if err != nil {
		if s.isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &product, nil
}

func (s *Store) GetProduct(ctx context.Context, vendorID string, id string) (*domain.Product, error) {
	var p domain.Product
	query := s.db.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ? AND vendor_id = ?`)
	if err := s.db.GetContext(ctx, &p, query, id, vendorID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, vendorID string, filter store.ProductFilter) ([]domain.Product, error) {
	var b strings.Builder
	args := []any{vendorID}
	b.WriteString(`SELECT ` + productColumns + ` FROM products WHERE vendor_id = ?`)

	if category := strings.TrimSpace(filter.Category); category != "" {
		b.WriteString(` AND category = ?`)
		args = append(args, category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		b.WriteString(` AND (name LIKE ? OR description LIKE ? OR sku LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}

	column := filter.SortColumn()
	switch column {
	case "cost_price", "selling_price", "quantity":
		column = s.num(column)
	}
	direction := "ASC"
	if filter.Descending() {
		direction = "DESC"
	}
	fmt.Fprintf(&b, ` ORDER BY %s %s, id %s`, column, direction, direction)

	products := make([]domain.Product, 0, 32)
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.UpdatedAt = product.UpdatedAt.UTC()
	// quantity is not written here; stock only moves through AdjustStock and
	// CreateSale.
	err := requireRow(s.db.NamedExecContext(ctx, `
		UPDATE products SET
			name = :name,
			category = :category,
			description = :description,
			cost_price = :cost_price,
			selling_price = :selling_price,
			unit = :unit,
			expiry_date = :expiry_date,
			sku = :sku,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id AND vendor_id = :vendor_id
	`, product))
	if err != nil {
		if s.isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return s.GetProduct(ctx, product.VendorID, product.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, vendorID string, id string) error {
	return requireRow(s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE id = ? AND vendor_id = ?`), id, vendorID))
}

func (s *Store) CountProducts(ctx context.Context, vendorID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM products WHERE vendor_id = ?`), vendorID)
	return count, err
}

func (s *Store) ListLowStock(ctx context.Context, vendorID string, threshold decimal.Decimal) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE vendor_id = ? AND %s <= %s ORDER BY %s ASC, name ASC`,
		productColumns, s.num("quantity"), s.num("?"), s.num("quantity"))

	products := make([]domain.Product, 0)
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), vendorID, threshold); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return products, nil
}

func (s *Store) ListExpiring(ctx context.Context, vendorID string, until domain.Date) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE vendor_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?
		ORDER BY expiry_date ASC, name ASC`

	products := make([]domain.Product, 0)
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), vendorID, until); err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	return products, nil
}
