package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

const (
	defaultWastePageSize = 50
	maxWastePageSize     = 500
	topWastedLimit       = 10
	unknownProductName   = "Unknown"
)

type WasteQuery struct {
	Range
	ProductID string
	Reason    string
	Limit     int
	Offset    int
}

// LogWaste records spoiled or discarded stock. The cost impact is fixed from
// the product's cost price now; stock levels are left alone.
func (s *Service) LogWaste(ctx context.Context, req domain.WasteCreateRequest) (domain.WasteLog, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.WasteLog{}, err
	}

	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" || req.Quantity == nil || req.Reason == "" {
		return domain.WasteLog{}, apperr.Validation("Missing required fields")
	}
	qty := req.Quantity.Round(domain.QuantityPlaces)
	if !qty.IsPositive() {
		return domain.WasteLog{}, apperr.Validation("Quantity must be > 0")
	}
	if !domain.IsWasteReason(req.Reason) {
		return domain.WasteLog{}, apperr.Validation("Reason must be one of expired, damaged, excess, other")
	}

	product, err := s.ownedProduct(ctx, vendorID, req.ProductID)
	if err != nil {
		return domain.WasteLog{}, err
	}

	wasteDate := s.today()
	if req.WasteDate != nil {
		wasteDate = *req.WasteDate
	}

	entry := domain.WasteLog{
		ID:         uuid.NewString(),
		ProductID:  product.ID,
		VendorID:   vendorID,
		Quantity:   qty,
		Reason:     req.Reason,
		WasteDate:  wasteDate,
		Notes:      req.Notes,
		CostImpact: domain.CostImpact(qty, product.CostPrice),
		CreatedAt:  s.now().UTC(),
	}

	saved, err := s.repo.CreateWasteLog(ctx, entry)
	if err != nil {
		return domain.WasteLog{}, translate(err, "Product not found")
	}
	s.metrics.ObserveWaste(saved.Reason)
	s.reqLog(ctx).Info("waste logged",
		zap.String("product_id", product.ID),
		zap.String("reason", saved.Reason),
		zap.String("cost_impact", saved.CostImpact.String()))

	saved.Product = refOf(*product)
	return *saved, nil
}

func (s *Service) ListWaste(ctx context.Context, q WasteQuery) (domain.WastePage, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.WastePage{}, err
	}
	filter, err := wasteFilter(q)
	if err != nil {
		return domain.WastePage{}, err
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultWastePageSize
	case filter.Limit > maxWastePageSize:
		filter.Limit = maxWastePageSize
	}
	filter.Offset = max(filter.Offset, 0)

	logs, total, err := s.repo.ListWasteLogs(ctx, vendorID, filter)
	if err != nil {
		return domain.WastePage{}, err
	}
	return domain.WastePage{
		WasteLogs:  logs,
		Pagination: domain.Pagination{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func (s *Service) WasteStats(ctx context.Context, r Range) (domain.WasteStats, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.WasteStats{}, err
	}
	filter, err := wasteFilter(WasteQuery{Range: r})
	if err != nil {
		return domain.WasteStats{}, err
	}
	filter.Limit, filter.Offset = 0, 0

	logs, _, err := s.repo.ListWasteLogs(ctx, vendorID, filter)
	if err != nil {
		return domain.WasteStats{}, err
	}

	stats := domain.WasteStats{
		Summary:           domain.WasteSummary{TotalCostImpact: decimal.Zero, TotalQuantity: decimal.Zero},
		WasteByReason:     map[string]int{},
		WasteByCategory:   map[string]decimal.Decimal{},
		TopWastedProducts: []domain.WastedProduct{},
	}
	byProduct := map[string]*domain.WastedProduct{}
	for _, entry := range logs {
		stats.Summary.TotalWaste++
		stats.Summary.TotalCostImpact = stats.Summary.TotalCostImpact.Add(entry.CostImpact)
		stats.Summary.TotalQuantity = stats.Summary.TotalQuantity.Add(entry.Quantity)
		stats.WasteByReason[entry.Reason]++

		category, name := domain.UncategorizedLabel, unknownProductName
		if entry.Product != nil {
			category, name = entry.Product.Category, entry.Product.Name
		}
		stats.WasteByCategory[category] = stats.WasteByCategory[category].Add(entry.Quantity)

		agg, ok := byProduct[entry.ProductID]
		if !ok {
			agg = &domain.WastedProduct{ProductID: entry.ProductID, ProductName: name}
			byProduct[entry.ProductID] = agg
		}
		agg.Quantity = agg.Quantity.Add(entry.Quantity)
		agg.CostImpact = agg.CostImpact.Add(entry.CostImpact)
		agg.Count++
	}

	for _, agg := range byProduct {
		stats.TopWastedProducts = append(stats.TopWastedProducts, *agg)
	}
	slices.SortFunc(stats.TopWastedProducts, func(a, b domain.WastedProduct) int {
		if c := b.CostImpact.Cmp(a.CostImpact); c != 0 {
			return c
		}
		return strings.Compare(a.ProductID, b.ProductID)
	})
	if len(stats.TopWastedProducts) > topWastedLimit {
		stats.TopWastedProducts = stats.TopWastedProducts[:topWastedLimit]
	}
	return stats, nil
}

func (s *Service) WasteByProduct(ctx context.Context, productID string) (domain.ProductWaste, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.ProductWaste{}, err
	}
	product, err := s.ownedProduct(ctx, vendorID, strings.TrimSpace(productID))
	if err != nil {
		return domain.ProductWaste{}, err
	}

	logs, _, err := s.repo.ListWasteLogs(ctx, vendorID, store.WasteFilter{ProductID: product.ID})
	if err != nil {
		return domain.ProductWaste{}, err
	}
	summary := domain.ProductWasteSummary{TotalWaste: decimal.Zero, TotalCostImpact: decimal.Zero, Count: len(logs)}
	for _, entry := range logs {
		summary.TotalWaste = summary.TotalWaste.Add(entry.Quantity)
		summary.TotalCostImpact = summary.TotalCostImpact.Add(entry.CostImpact)
	}
	return domain.ProductWaste{
		Product:   product.WithDerived(s.clock()),
		WasteLogs: logs,
		Summary:   summary,
	}, nil
}

func (s *Service) DeleteWaste(ctx context.Context, id string) error {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	entry, err := s.repo.GetWasteLog(ctx, vendorID, id)
	if err != nil {
		return translate(err, "Waste log not found")
	}
	if err := s.repo.DeleteWasteLog(ctx, vendorID, entry.ID); err != nil {
		return translate(err, "Waste log not found")
	}
	s.reqLog(ctx).Info("waste log deleted",
		zap.String("waste_id", entry.ID),
		zap.String("product_id", entry.ProductID),
		zap.String("cost_impact", entry.CostImpact.String()))
	return nil
}

func wasteFilter(q WasteQuery) (store.WasteFilter, error) {
	from, to, err := dateBounds(q.Range)
	if err != nil {
		return store.WasteFilter{}, err
	}
	if q.Reason != "" && !domain.IsWasteReason(q.Reason) {
		return store.WasteFilter{}, apperr.Validation("Reason must be one of expired, damaged, excess, other")
	}
	return store.WasteFilter{
		From:      from,
		To:        to,
		ProductID: strings.TrimSpace(q.ProductID),
		Reason:    q.Reason,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}, nil
}
