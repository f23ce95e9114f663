package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

var defaultLowStockThreshold = decimal.NewFromInt(10)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Category == "" || req.Unit == "" ||
		req.CostPrice == nil || req.SellingPrice == nil || req.Quantity == nil {
		return domain.Product{}, apperr.Validation("Missing required fields")
	}
	if err := validatePrices(*req.CostPrice, *req.SellingPrice); err != nil {
		return domain.Product{}, err
	}
	if req.Quantity.IsNegative() {
		return domain.Product{}, apperr.Validation("Quantity must be >= 0")
	}

	now := s.now().UTC()
	product := domain.Product{
		ID:           uuid.NewString(),
		VendorID:     vendorID,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		CostPrice:    req.CostPrice.Round(domain.MoneyPlaces),
		SellingPrice: req.SellingPrice.Round(domain.MoneyPlaces),
		Quantity:     req.Quantity.Round(domain.QuantityPlaces),
		Unit:         req.Unit,
		ExpiryDate:   req.ExpiryDate,
		SKU:          normalizeSKU(req.SKU),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, skuConflict(err)
	}
	return created.WithDerived(s.clock()), nil
}

func (s *Service) ListProducts(ctx context.Context, filter store.ProductFilter) ([]domain.Product, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx, vendorID, filter)
	if err != nil {
		return nil, err
	}
	return s.withDerived(products), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	product, err := s.ownedProduct(ctx, vendorID, id)
	if err != nil {
		return domain.Product{}, err
	}
	return product.WithDerived(s.clock()), nil
}

// UpdateProduct applies the fields present in req. Stock is not editable here;
// it moves only through adjustments and sales.
func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	existing, err := s.ownedProduct(ctx, vendorID, id)
	if err != nil {
		return domain.Product{}, err
	}

	merged := *existing
	if req.Name != nil {
		merged.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		merged.Category = strings.TrimSpace(*req.Category)
	}
	if req.Unit != nil {
		merged.Unit = strings.TrimSpace(*req.Unit)
	}
	if merged.Name == "" || merged.Category == "" || merged.Unit == "" {
		return domain.Product{}, apperr.Validation("Missing required fields")
	}
	if req.Description != nil {
		merged.Description = req.Description
	}
	if req.CostPrice != nil {
		merged.CostPrice = req.CostPrice.Round(domain.MoneyPlaces)
	}
	if req.SellingPrice != nil {
		merged.SellingPrice = req.SellingPrice.Round(domain.MoneyPlaces)
	}
	if err := validatePrices(merged.CostPrice, merged.SellingPrice); err != nil {
		return domain.Product{}, err
	}
	if req.ExpiryDate != nil {
		merged.ExpiryDate = req.ExpiryDate
	}
	if req.SKU != nil {
		merged.SKU = normalizeSKU(req.SKU)
	}
	if req.IsActive != nil {
		merged.IsActive = *req.IsActive
	}
	merged.UpdatedAt = s.now().UTC()

	updated, err := s.repo.UpdateProduct(ctx, merged)
	if err != nil {
		return domain.Product{}, skuConflict(err)
	}
	return updated.WithDerived(s.clock()), nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return err
	}
	return translate(s.repo.DeleteProduct(ctx, vendorID, id), "Product not found")
}

// LowStock lists products at or below threshold, lowest first. A nil
// threshold means 10.
func (s *Service) LowStock(ctx context.Context, threshold *decimal.Decimal) ([]domain.Product, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	limit := defaultLowStockThreshold
	if threshold != nil {
		if threshold.IsNegative() {
			return nil, apperr.Validation("Threshold must be >= 0")
		}
		limit = *threshold
	}
	products, err := s.repo.ListLowStock(ctx, vendorID, limit)
	if err != nil {
		return nil, err
	}
	return s.withDerived(products), nil
}

func (s *Service) withDerived(products []domain.Product) []domain.Product {
	now := s.clock()
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.WithDerived(now))
	}
	return out
}

func validatePrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() {
		return apperr.Validation("Prices cannot be negative")
	}
	if selling.LessThan(cost) {
		return apperr.Validation("Selling price must be greater than cost price")
	}
	return nil
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func skuConflict(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict("Product with this SKU already exists")
	}
	return translate(err, "Product not found")
}
