package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

const (
	defaultAnalyticsDays = 30
	topProductsLimit     = 10
)

func sumRevenue(sales []domain.Sale, from, to time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		if !sale.SoldAt.Before(from) && sale.SoldAt.Before(to) {
			total = total.Add(sale.Total)
		}
	}
	return total
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	today := s.today()
	todayStart, _ := s.dayBounds(today)
	yesterdayStart, _ := s.dayBounds(today.AddDays(-1))
	tomorrowStart, _ := s.dayBounds(today.AddDays(1))

	all, err := s.repo.ListSales(ctx, vendorID, store.SaleFilter{})
	if err != nil {
		return domain.DashboardStats{}, err
	}
	count, err := s.repo.CountProducts(ctx, vendorID)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	todays := sumRevenue(all, todayStart, tomorrowStart)
	yesterdays := sumRevenue(all, yesterdayStart, todayStart)
	total := decimal.Zero
	for _, sale := range all {
		total = total.Add(sale.Total)
	}

	return domain.DashboardStats{
		TodaysRevenue: todays,
		RevenueChange: domain.PercentChange(todays, yesterdays),
		TotalProducts: count,
		TotalRevenue:  total,
	}, nil
}

// SalesAnalytics aggregates the sales ledger over a day-aligned range, the
// last 30 days by default. Profit uses each product's current cost price.
func (s *Service) SalesAnalytics(ctx context.Context, r Range) (domain.SalesAnalytics, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.SalesAnalytics{}, err
	}

	today := s.today()
	if strings.TrimSpace(r.Start) == "" {
		r.Start = today.AddDays(-defaultAnalyticsDays).String()
	}
	if strings.TrimSpace(r.End) == "" {
		r.End = today.String()
	}
	from, to, err := dateBounds(r)
	if err != nil {
		return domain.SalesAnalytics{}, err
	}
	start, _ := s.dayBounds(*from)
	_, end := s.dayBounds(*to)

	sales, err := s.repo.ListSales(ctx, vendorID, store.SaleFilter{From: &start, To: &end})
	if err != nil {
		return domain.SalesAnalytics{}, err
	}
	count, err := s.repo.CountProducts(ctx, vendorID)
	if err != nil {
		return domain.SalesAnalytics{}, err
	}

	todayStart, _ := s.dayBounds(today)
	yesterdayStart, _ := s.dayBounds(today.AddDays(-1))
	tomorrowStart, _ := s.dayBounds(today.AddDays(1))
	todays := sumRevenue(sales, todayStart, tomorrowStart)

	summary := domain.AnalyticsSummary{
		TodaysRevenue: todays,
		TotalRevenue:  decimal.Zero,
		TotalProfit:   decimal.Zero,
		TotalSales:    len(sales),
		TotalProducts: count,
		AvgOrderValue: decimal.Zero,
		RevenueChange: domain.PercentChange(todays, sumRevenue(sales, yesterdayStart, todayStart)),
	}
	byCategory := map[string]domain.CategoryTotals{}
	byProduct := map[string]*domain.TopProduct{}
	byDay := map[string]*domain.TrendPoint{}

	for _, sale := range sales {
		name, category, cost := unknownProductName, domain.UncategorizedLabel, decimal.Zero
		if sale.Product != nil {
			name, category, cost = sale.Product.Name, sale.Product.Category, sale.Product.CostPrice
		}

		summary.TotalRevenue = summary.TotalRevenue.Add(sale.Total)
		summary.TotalProfit = summary.TotalProfit.Add(sale.Total.Sub(cost.Mul(sale.Quantity)))

		cat := byCategory[category]
		cat.Count++
		cat.Revenue = cat.Revenue.Add(sale.Total)
		byCategory[category] = cat

		top, ok := byProduct[sale.ProductID]
		if !ok {
			top = &domain.TopProduct{ProductID: sale.ProductID, ProductName: name, Category: category}
			byProduct[sale.ProductID] = top
		}
		top.TotalQuantity = top.TotalQuantity.Add(sale.Quantity)
		top.TotalRevenue = top.TotalRevenue.Add(sale.Total)
		top.SalesCount++

		day := sale.SoldAt.In(s.loc).Format(domain.DateLayout)
		point, ok := byDay[day]
		if !ok {
			point = &domain.TrendPoint{Date: day}
			byDay[day] = point
		}
		point.Revenue = point.Revenue.Add(sale.Total)
		point.SalesCount++
	}
	summary.TotalProfit = summary.TotalProfit.Round(domain.MoneyPlaces)
	if len(sales) > 0 {
		summary.AvgOrderValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(domain.MoneyPlaces)
	}

	topProducts := make([]domain.TopProduct, 0, len(byProduct))
	for _, top := range byProduct {
		topProducts = append(topProducts, *top)
	}
	slices.SortFunc(topProducts, func(a, b domain.TopProduct) int {
		if c := b.TotalRevenue.Cmp(a.TotalRevenue); c != 0 {
			return c
		}
		return strings.Compare(a.ProductID, b.ProductID)
	})
	if len(topProducts) > topProductsLimit {
		topProducts = topProducts[:topProductsLimit]
	}

	trend := make([]domain.TrendPoint, 0, len(byDay))
	for _, point := range byDay {
		trend = append(trend, *point)
	}
	slices.SortFunc(trend, func(a, b domain.TrendPoint) int {
		return strings.Compare(a.Date, b.Date)
	})

	return domain.SalesAnalytics{
		Summary:         summary,
		SalesByCategory: byCategory,
		TopProducts:     topProducts,
		SalesTrend:      trend,
		Period:          domain.Period{StartDate: start, EndDate: end},
	}, nil
}

// MonthlyComparison compares the whole current calendar month with the whole
// previous month. Sales dated later this month count toward the current one.
func (s *Service) MonthlyComparison(ctx context.Context) (domain.MonthlyComparison, error) {
	vendorID, err := s.vendorID(ctx)
	if err != nil {
		return domain.MonthlyComparison{}, err
	}

	now := s.clock()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	lastStart := currentStart.AddDate(0, -1, 0)
	end := currentStart.AddDate(0, 1, 0).Add(-time.Nanosecond).UTC()
	from := lastStart.UTC()

	sales, err := s.repo.ListSales(ctx, vendorID, store.SaleFilter{From: &from, To: &end})
	if err != nil {
		return domain.MonthlyComparison{}, err
	}

	current := domain.PeriodTotals{Revenue: decimal.Zero}
	last := domain.PeriodTotals{Revenue: decimal.Zero}
	for _, sale := range sales {
		if sale.SoldAt.Before(currentStart) {
			last.Revenue = last.Revenue.Add(sale.Total)
			last.SalesCount++
			continue
		}
		current.Revenue = current.Revenue.Add(sale.Total)
		current.SalesCount++
	}

	return domain.MonthlyComparison{
		CurrentMonth: current,
		LastMonth:    last,
		Change:       domain.PercentChange(current.Revenue, last.Revenue),
	}, nil
}
