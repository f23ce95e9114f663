package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seedProduct(t *testing.T, s *Store, vendorID string, qty string) domain.Product {
	t.Helper()
	now := time.Now().UTC()
	sku := "SKU-" + uuid.NewString()[:8]
	p := domain.Product{
		ID:           uuid.NewString(),
		VendorID:     vendorID,
		Name:         "Tomatoes",
		Category:     "Vegetables",
		CostPrice:    dec("10"),
		SellingPrice: dec("15"),
		Quantity:     dec(qty),
		Unit:         "kg",
		SKU:          &sku,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.CreateProduct(context.Background(), p)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return *created
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUsersUniqueEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	user := domain.User{ID: uuid.NewString(), Email: "a@b.co", PasswordHash: "$2a$x", Role: domain.RoleVendor, IsActive: true, CreatedAt: now, UpdatedAt: now}

	if _, err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	user.ID = uuid.NewString()
	if _, err := s.CreateUser(ctx, user); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "a@b.co")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if !got.IsActive || got.Role != domain.RoleVendor {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := s.GetUserByEmail(ctx, "A@B.CO"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected case-sensitive lookup to miss, got %v", err)
	}
}

func TestProductCRUDAndTenantIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "vendor-a", "100")

	if _, err := s.GetProduct(ctx, "vendor-b", p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected other vendor lookup to be not found, got %v", err)
	}
	if err := s.DeleteProduct(ctx, "vendor-b", p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected other vendor delete to be not found, got %v", err)
	}

	dup := p
	dup.ID = uuid.NewString()
	if _, err := s.CreateProduct(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate sku, got %v", err)
	}

	p.Name = "Cherry Tomatoes"
	p.Quantity = dec("1")
	updated, err := s.UpdateProduct(ctx, p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Cherry Tomatoes" {
		t.Fatalf("expected renamed product, got %q", updated.Name)
	}
	if !updated.Quantity.Equal(dec("100")) {
		t.Fatalf("catalog update must not touch quantity, got %s", updated.Quantity)
	}
}

func TestListProductsFiltersAndSortsNumerically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "v", "9")
	seedProduct(t, s, "v", "10")
	seedProduct(t, s, "v", "100")
	seedProduct(t, s, "other", "1")

	products, err := s.ListProducts(ctx, "v", store.ProductFilter{SortBy: "quantity", SortOrder: "ASC"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if !products[0].Quantity.Equal(dec("9")) || !products[2].Quantity.Equal(dec("100")) {
		t.Fatalf("expected numeric ordering, got %s, %s, %s", products[0].Quantity, products[1].Quantity, products[2].Quantity)
	}

	low, err := s.ListLowStock(ctx, "v", dec("10"))
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low stock products (9 and 10), got %d", len(low))
	}

	found, err := s.ListProducts(ctx, "v", store.ProductFilter{Search: "tomat"})
	if err != nil || len(found) != 3 {
		t.Fatalf("expected search to match 3, got %d (%v)", len(found), err)
	}
}

func TestSaleDecrementsStockAtomically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "100")
	now := time.Now().UTC()

	sale := domain.Sale{
		ID: uuid.NewString(), VendorID: "v", ProductID: p.ID,
		Quantity: dec("30"), UnitPrice: dec("15"), Total: domain.SaleTotal(dec("30"), dec("15")),
		SoldAt: now, CreatedAt: now,
	}
	_, product, err := s.CreateSale(ctx, sale)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !product.Quantity.Equal(dec("70")) {
		t.Fatalf("expected 70 remaining, got %s", product.Quantity)
	}

	tooMuch := sale
	tooMuch.ID = uuid.NewString()
	tooMuch.Quantity = dec("71")
	if _, _, err := s.CreateSale(ctx, tooMuch); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	stored, err := s.GetProduct(ctx, "v", p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !stored.Quantity.Equal(dec("70")) {
		t.Fatalf("failed sale changed stock to %s", stored.Quantity)
	}

	sales, err := s.ListSales(ctx, "v", store.SaleFilter{})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || !sales[0].Total.Equal(dec("450")) {
		t.Fatalf("expected one sale totalling 450, got %+v", sales)
	}
	if sales[0].Product == nil || sales[0].Product.Category != "Vegetables" || !sales[0].Product.CostPrice.Equal(dec("10")) {
		t.Fatalf("expected joined product summary, got %+v", sales[0].Product)
	}
}

func TestListSalesDateRangeIsInclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "100")
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	for _, offset := range []int{-1, 0, 1} {
		at := base.AddDate(0, 0, offset)
		if _, _, err := s.CreateSale(ctx, domain.Sale{
			ID: uuid.NewString(), VendorID: "v", ProductID: p.ID,
			Quantity: dec("1"), UnitPrice: dec("2"), Total: dec("2"), SoldAt: at, CreatedAt: at,
		}); err != nil {
			t.Fatalf("create sale: %v", err)
		}
	}

	from, to := base, base
	sales, err := s.ListSales(ctx, "v", store.SaleFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || !sales[0].SoldAt.Equal(base) {
		t.Fatalf("expected exactly the boundary sale, got %d", len(sales))
	}
}

func TestConcurrentRemovesNeverOversell(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "100")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AdjustStock(ctx, domain.InventoryAdjustment{
				ID: uuid.NewString(), ProductID: p.ID, VendorID: "v",
				Type: domain.AdjustmentRemove, Quantity: dec("60"), Reason: "spoilage",
				CreatedAt: time.Now().UTC(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if err != nil {
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one failure, got %d", failures)
	}

	stored, _ := s.GetProduct(ctx, "v", p.ID)
	if !stored.Quantity.Equal(dec("40")) {
		t.Fatalf("expected 40 remaining, got %s", stored.Quantity)
	}
	adjustments, err := s.ListAdjustments(ctx, "v", p.ID)
	if err != nil {
		t.Fatalf("list adjustments: %v", err)
	}
	if len(adjustments) != 1 || adjustments[0].Product == nil || adjustments[0].Product.Unit != "kg" {
		t.Fatalf("expected one adjustment with product summary, got %+v", adjustments)
	}
}

func TestWasteLogsPaginateNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "100")
	start := domain.NewDate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		if _, err := s.CreateWasteLog(ctx, domain.WasteLog{
			ID: uuid.NewString(), ProductID: p.ID, VendorID: "v",
			Quantity: dec("1"), Reason: domain.WasteExpired, WasteDate: start.AddDays(i),
			CostImpact: dec("10"), CreatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("create waste: %v", err)
		}
	}

	page, total, err := s.ListWasteLogs(ctx, "v", store.WasteFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list waste: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("expected total 5 and page of 2, got %d and %d", total, len(page))
	}
	if page[0].WasteDate.String() != "2026-01-04" {
		t.Fatalf("expected second newest first, got %s", page[0].WasteDate)
	}

	to := start.AddDays(1)
	ranged, total, err := s.ListWasteLogs(ctx, "v", store.WasteFilter{From: &start, To: &to})
	if err != nil || total != 2 || len(ranged) != 2 {
		t.Fatalf("expected 2 rows in range, got %d/%d (%v)", len(ranged), total, err)
	}

	if err := s.DeleteWasteLog(ctx, "someone-else", page[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found deleting another vendor's log, got %v", err)
	}
}

func TestReplacePredictions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := domain.NewDate(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	batch := func(model string) []domain.Prediction {
		out := make([]domain.Prediction, 0, 3)
		for i := 0; i < 3; i++ {
			out = append(out, domain.Prediction{
				ID: uuid.NewString(), ProductID: "p1", VendorID: "v", ForecastDate: day.AddDays(i),
				PredictedQuantity: dec("12.5"), ConfidenceLevel: dec("0.8"), ModelUsed: model,
				Recommendations: domain.StringList{"restock"}, CreatedAt: time.Now().UTC(),
			})
		}
		return out
	}

	if err := s.ReplacePredictions(ctx, "v", "p1", day, batch("Fallback")); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := s.ReplacePredictions(ctx, "v", "p1", day, batch("LinearRegression")); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := s.ListPredictions(ctx, "v", "p1", 0)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected replaced set of 3, got %d", len(got))
	}
	if got[0].ModelUsed != "LinearRegression" || len(got[0].Recommendations) != 1 {
		t.Fatalf("unexpected prediction %+v", got[0])
	}
	if got[0].ForecastDate.String() != "2026-06-01" {
		t.Fatalf("expected ascending forecast dates, got %s", got[0].ForecastDate)
	}
}

func seedNamed(t *testing.T, s *Store, vendorID, name, qty string, expiry *domain.Date) domain.Product {
	t.Helper()
	now := time.Now().UTC()
	created, err := s.CreateProduct(context.Background(), domain.Product{
		ID: uuid.NewString(), VendorID: vendorID, Name: name, Category: "Produce",
		CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: dec(qty), Unit: "kg",
		ExpiryDate: expiry, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return *created
}

func TestLowStockAndExpiringOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	today := domain.NewDate(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	expired, edge, later := today.AddDays(-2), today.AddDays(7), today.AddDays(8)

	seedNamed(t, s, "v", "Yogurt", "10", &edge)
	seedNamed(t, s, "v", "Cream", "0.5", &expired)
	seedNamed(t, s, "v", "Cheese", "2", &later)
	seedNamed(t, s, "v", "Rice", "40", nil)
	seedNamed(t, s, "other", "Milk", "1", &expired)

	low, err := s.ListLowStock(ctx, "v", dec("10"))
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 3 || low[0].Name != "Cream" || low[1].Name != "Cheese" || low[2].Name != "Yogurt" {
		t.Fatalf("expected Cream, Cheese, Yogurt by quantity, got %+v", low)
	}

	expiring, err := s.ListExpiring(ctx, "v", today.AddDays(7))
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(expiring) != 2 || expiring[0].Name != "Cream" || expiring[1].Name != "Yogurt" {
		t.Fatalf("expected Cream then Yogurt, got %+v", expiring)
	}
	if expiring[1].ExpiryDate == nil || expiring[1].ExpiryDate.String() != "2026-04-22" {
		t.Fatalf("expected expiry 2026-04-22, got %v", expiring[1].ExpiryDate)
	}
}

func TestForeignAdjustmentLeavesStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "10")

	_, _, err := s.AdjustStock(ctx, domain.InventoryAdjustment{
		ID: uuid.NewString(), ProductID: p.ID, VendorID: "intruder",
		Type: domain.AdjustmentRemove, Quantity: dec("5"), Reason: "shrink",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored, err := s.GetProduct(ctx, "v", p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !stored.Quantity.Equal(dec("10")) {
		t.Fatalf("expected stock 10, got %s", stored.Quantity)
	}
	for _, vendorID := range []string{"v", "intruder"} {
		adjustments, err := s.ListAdjustments(ctx, vendorID, "")
		if err != nil || len(adjustments) != 0 {
			t.Fatalf("%s: expected no adjustments, got %d (%v)", vendorID, len(adjustments), err)
		}
	}
}

func TestLedgerListsAreScopedToVendor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mine := seedProduct(t, s, "v", "50")
	theirs := seedProduct(t, s, "other", "50")
	now := time.Now().UTC()

	for _, p := range []domain.Product{mine, theirs} {
		if _, _, err := s.CreateSale(ctx, domain.Sale{
			ID: uuid.NewString(), VendorID: p.VendorID, ProductID: p.ID,
			Quantity: dec("1"), UnitPrice: dec("15"), Total: dec("15"), SoldAt: now, CreatedAt: now,
		}); err != nil {
			t.Fatalf("sale: %v", err)
		}
	}
	if _, _, err := s.AdjustStock(ctx, domain.InventoryAdjustment{
		ID: uuid.NewString(), ProductID: mine.ID, VendorID: "v",
		Type: domain.AdjustmentAdd, Quantity: dec("1"), Reason: "restock", CreatedAt: now,
	}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	sales, err := s.ListSales(ctx, "other", store.SaleFilter{})
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 || sales[0].ProductID != theirs.ID {
		t.Fatalf("expected only the other vendor's sale, got %+v", sales)
	}
	if sales, _ := s.ListSales(ctx, "other", store.SaleFilter{ProductID: mine.ID}); len(sales) != 0 {
		t.Fatalf("filtering by a foreign product must return nothing, got %d", len(sales))
	}
	if adjustments, _ := s.ListAdjustments(ctx, "other", mine.ID); len(adjustments) != 0 {
		t.Fatalf("expected no adjustments for other vendor, got %d", len(adjustments))
	}
}

func TestGetWasteLogIsScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "v", "10")
	entry, err := s.CreateWasteLog(ctx, domain.WasteLog{
		ID: uuid.NewString(), ProductID: p.ID, VendorID: "v",
		Quantity: dec("2"), Reason: domain.WasteDamaged,
		WasteDate:  domain.NewDate(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)),
		CostImpact: dec("20"), CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create waste: %v", err)
	}

	got, err := s.GetWasteLog(ctx, "v", entry.ID)
	if err != nil {
		t.Fatalf("get waste: %v", err)
	}
	if !got.CostImpact.Equal(dec("20")) || got.WasteDate.String() != "2026-04-15" {
		t.Fatalf("unexpected waste log %+v", got)
	}
	if _, err := s.GetWasteLog(ctx, "other", entry.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another vendor, got %v", err)
	}
}
