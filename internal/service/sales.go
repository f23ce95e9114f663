package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

type SaleQuery struct {
	Range
	ProductID string
}

// CreateSale records a sale and decrements stock in one repository
// transaction. A sale larger than the stock on hand fails with no effect.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.Sale{}, err
	}

	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" || req.Quantity == nil || req.UnitPrice == nil {
		return domain.Sale{}, apperr.Validation("Missing required fields")
	}
	qty := req.Quantity.Round(domain.QuantityPlaces)
	price := req.UnitPrice.Round(domain.MoneyPlaces)
	if !qty.IsPositive() || price.IsNegative() {
		return domain.Sale{}, apperr.Validation("Quantity must be > 0 and price must be >= 0")
	}

	now := s.now().UTC()
	soldAt := now
	if req.SoldAt != nil {
		soldAt = req.SoldAt.UTC()
	}

	sale := domain.Sale{
		ID:        uuid.NewString(),
		VendorID:  vendorID,
		ProductID: req.ProductID,
		Quantity:  qty,
		UnitPrice: price,
		Total:     domain.SaleTotal(qty, price),
		SoldAt:    soldAt,
		CreatedAt: now,
	}

	saved, product, err := s.repo.CreateSale(ctx, sale)
	s.metrics.ObserveStockMutation("sale", err)
	if err != nil {
		return domain.Sale{}, translate(err, "Product not found")
	}
	s.metrics.ObserveSale()

	s.reqLog(ctx).Info("sale recorded",
		zap.String("sale_id", saved.ID),
		zap.String("product_id", product.ID),
		zap.String("total", saved.Total.String()),
		zap.String("stock", product.Quantity.String()))

	saved.Product = refOf(*product)
	return *saved, nil
}

func (s *Service) ListSales(ctx context.Context, q SaleQuery) ([]domain.Sale, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return nil, err
	}
	from, to, err := s.timeBounds(q.Range)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, vendorID, store.SaleFilter{
		From:      from,
		To:        to,
		ProductID: strings.TrimSpace(q.ProductID),
	})
}

func (s *Service) SalesSummary(ctx context.Context, q SaleQuery) (domain.SalesSummary, error) {
	sales, err := s.ListSales(ctx, q)
	if err != nil {
		return domain.SalesSummary{}, err
	}
	summary := domain.SalesSummary{
		Count:         len(sales),
		TotalRevenue:  decimal.Zero,
		TotalQuantity: decimal.Zero,
	}
	for _, sale := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.Total)
		summary.TotalQuantity = summary.TotalQuantity.Add(sale.Quantity)
	}
	return summary, nil
}
