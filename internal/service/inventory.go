package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
)

// AdjustInventory validates the request, then lets the repository apply it
// under the product row lock. Nothing is written when any step fails.
func (s *Service) AdjustInventory(ctx context.Context, req domain.AdjustmentRequest) (domain.AdjustmentResult, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.AdjustmentResult{}, err
	}

	req.ProductID = strings.TrimSpace(req.ProductID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ProductID == "" || req.Type == "" || req.Quantity == nil || req.Reason == "" {
		return domain.AdjustmentResult{}, apperr.Validation("Missing required fields")
	}
	if !domain.IsAdjustmentType(req.Type) {
		return domain.AdjustmentResult{}, apperr.Validation("Type must be add, remove, or correction")
	}
	qty := req.Quantity.Round(domain.QuantityPlaces)
	switch {
	case req.Type == domain.AdjustmentCorrection && qty.IsNegative():
		return domain.AdjustmentResult{}, apperr.Validation("Quantity must be >= 0")
	case req.Type != domain.AdjustmentCorrection && !qty.IsPositive():
		return domain.AdjustmentResult{}, apperr.Validation("Quantity must be > 0")
	}

	adj := domain.InventoryAdjustment{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		VendorID:  vendorID,
		Type:      req.Type,
		Quantity:  qty,
		Reason:    req.Reason,
		Notes:     req.Notes,
		CreatedAt: s.now().UTC(),
	}

	saved, product, err := s.repo.AdjustStock(ctx, adj)
	s.metrics.ObserveStockMutation(req.Type, err)
	if err != nil {
		return domain.AdjustmentResult{}, translate(err, "Product not found")
	}

	s.reqLog(ctx).Info("inventory adjusted",
		zap.String("product_id", product.ID),
		zap.String("type", saved.Type),
		zap.String("quantity", saved.Quantity.String()),
		zap.String("stock", product.Quantity.String()))

	saved.Product = &domain.ProductRef{ID: product.ID, Name: product.Name, Unit: product.Unit}
	return domain.AdjustmentResult{Adjustment: *saved, Product: product.WithDerived(s.clock())}, nil
}

func (s *Service) ListAdjustments(ctx context.Context, productID string) ([]domain.InventoryAdjustment, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, vendorID, strings.TrimSpace(productID))
}

// LowStockSummary reports products at or below threshold plus products that
// expire within a week, including ones already past their date.
func (s *Service) LowStockSummary(ctx context.Context, threshold *decimal.Decimal) (domain.LowStockSummary, error) {
	low, err := s.LowStock(ctx, threshold)
	if err != nil {
		return domain.LowStockSummary{}, err
	}
	vendorID, _ := s.vendorID(ctx)

	expiring, err := s.repo.ListExpiring(ctx, vendorID, s.today().AddDays(7))
	if err != nil {
		return domain.LowStockSummary{}, err
	}
	expiring = s.withDerived(expiring)

	return domain.LowStockSummary{
		LowStockCount:    len(low),
		LowStockProducts: low,
		ExpiringCount:    len(expiring),
		ExpiringProducts: expiring,
	}, nil
}
