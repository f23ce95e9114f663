package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vendorhub/backend/internal/domain"
	"vendorhub/backend/internal/store"
)

// Store keeps everything in maps guarded by one mutex. Holding the write lock
// for the whole read-modify-write of AdjustStock and CreateSale gives the same
// serialization a row lock gives in the SQL store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	products    map[string]domain.Product
	adjustments []domain.InventoryAdjustment
	sales       []domain.Sale
	wasteLogs   map[string]domain.WasteLog
	predictions []domain.Prediction
}

func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		products:    make(map[string]domain.Product),
		adjustments: make([]domain.InventoryAdjustment, 0, 64),
		sales:       make([]domain.Sale, 0, 128),
		wasteLogs:   make(map[string]domain.WasteLog),
		predictions: make([]domain.Prediction, 0, 64),
	}
}

// NewSeeded returns a store holding one demo vendor and a small catalog.
// Credentials come from SEED_VENDOR_EMAIL and SEED_VENDOR_PASSWORD; the dev
// defaults are logged as a warning when either is unset.
func NewSeeded(log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	email := envOr("SEED_VENDOR_EMAIL", "vendor@vendorhub.local")
	password := envOr("SEED_VENDOR_PASSWORD", "Vendor123!")
	if os.Getenv("SEED_VENDOR_EMAIL") == "" || os.Getenv("SEED_VENDOR_PASSWORD") == "" {
		log.Warn("memory store using default dev credentials; set SEED_VENDOR_EMAIL and SEED_VENDOR_PASSWORD to override",
			zap.String("email", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s := New()
	now := time.Now().UTC()
	business := "Demo Market Stall"
	vendor := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleVendor,
		BusinessName: &business,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[vendor.ID] = vendor

	for _, seed := range []struct {
		name, category, unit string
		cost, sell, qty      string
	}{
		{"Tomatoes", "Vegetables", "kg", "1.20", "2.50", "80"},
		{"Bananas", "Fruit", "kg", "0.90", "1.80", "45.5"},
		{"Sourdough Loaf", "Bakery", "piece", "2.10", "4.50", "12"},
		{"Free Range Eggs", "Dairy", "dozen", "2.40", "3.90", "6"},
		{"Basil", "Herbs", "bunch", "0.60", "1.50", "20"},
	} {
		p := domain.Product{
			ID:           uuid.NewString(),
			VendorID:     vendor.ID,
			Name:         seed.name,
			Category:     seed.category,
			CostPrice:    decimal.RequireFromString(seed.cost),
			SellingPrice: decimal.RequireFromString(seed.sell),
			Quantity:     decimal.RequireFromString(seed.qty),
			Unit:         seed.unit,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.products[p.ID] = p
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, store.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.SKU != nil && s.skuTaken(*product.SKU, "") {
		return nil, store.ErrDuplicate
	}
	s.products[product.ID] = product
	return &product, nil
}

func (s *Store) skuTaken(sku string, exceptID string) bool {
	for id, p := range s.products {
		if id != exceptID && p.SKU != nil && *p.SKU == sku {
			return true
		}
	}
	return false
}

func (s *Store) GetProduct(_ context.Context, vendorID string, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.VendorID != vendorID {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, vendorID string, filter store.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category := strings.TrimSpace(filter.Category)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.VendorID != vendorID {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p)
	}

	column := filter.SortColumn()
	desc := filter.Descending()
	slices.SortFunc(out, func(a, b domain.Product) int {
		c := compareProducts(a, b, column)
		if c == 0 {
			c = cmpString(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
	return out, nil
}

// matchesSearch mirrors the SQL store's LIKE match on name, description or sku.
// Matching is case-insensitive, as with SQLite's default LIKE.
func matchesSearch(p domain.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	if p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle) {
		return true
	}
	return p.SKU != nil && strings.Contains(strings.ToLower(*p.SKU), needle)
}

func compareProducts(a, b domain.Product, column string) int {
	switch column {
	case "name":
		return cmpString(a.Name, b.Name)
	case "category":
		return cmpString(a.Category, b.Category)
	case "cost_price":
		return a.CostPrice.Cmp(b.CostPrice)
	case "selling_price":
		return a.SellingPrice.Cmp(b.SellingPrice)
	case "quantity":
		return a.Quantity.Cmp(b.Quantity)
	case "expiry_date":
		return compareDates(a.ExpiryDate, b.ExpiryDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareDates(a, b *domain.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(b.Time)
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok || current.VendorID != product.VendorID {
		return nil, store.ErrNotFound
	}
	if product.SKU != nil && s.skuTaken(*product.SKU, product.ID) {
		return nil, store.ErrDuplicate
	}
	// Stock only moves through AdjustStock and CreateSale.
	product.Quantity = current.Quantity
	product.CreatedAt = current.CreatedAt
	s.products[product.ID] = product
	return &product, nil
}

func (s *Store) DeleteProduct(_ context.Context, vendorID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.VendorID != vendorID {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) CountProducts(_ context.Context, vendorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.products {
		if p.VendorID == vendorID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListLowStock(_ context.Context, vendorID string, threshold decimal.Decimal) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.VendorID == vendorID && p.Quantity.LessThanOrEqual(threshold) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		if c := a.Quantity.Cmp(b.Quantity); c != 0 {
			return c
		}
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) ListExpiring(_ context.Context, vendorID string, until domain.Date) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.VendorID == vendorID && p.ExpiryDate != nil && !p.ExpiryDate.After(until.Time) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		if c := compareDates(a.ExpiryDate, b.ExpiryDate); c != 0 {
			return c
		}
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) AdjustStock(_ context.Context, adj domain.InventoryAdjustment) (*domain.InventoryAdjustment, *domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[adj.ProductID]
	if !ok || product.VendorID != adj.VendorID {
		return nil, nil, store.ErrNotFound
	}
	next, err := domain.ApplyAdjustment(product.Quantity, adj.Type, adj.Quantity)
	if err != nil {
		return nil, nil, err
	}

	product.Quantity = next
	product.UpdatedAt = adj.CreatedAt
	s.products[product.ID] = product
	s.adjustments = append(s.adjustments, adj)
	return &adj, &product, nil
}

func (s *Store) ListAdjustments(_ context.Context, vendorID string, productID string) ([]domain.InventoryAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryAdjustment, 0)
	for _, adj := range s.adjustments {
		if adj.VendorID != vendorID || (productID != "" && adj.ProductID != productID) {
			continue
		}
		if p, ok := s.products[adj.ProductID]; ok {
			adj.Product = &domain.ProductRef{ID: p.ID, Name: p.Name, Unit: p.Unit}
		}
		out = append(out, adj)
	}
	slices.SortStableFunc(out, func(a, b domain.InventoryAdjustment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, *domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[sale.ProductID]
	if !ok || product.VendorID != sale.VendorID {
		return nil, nil, store.ErrNotFound
	}
	next, err := domain.ApplySale(product.Quantity, sale.Quantity)
	if err != nil {
		return nil, nil, err
	}

	product.Quantity = next
	product.UpdatedAt = sale.CreatedAt
	s.products[product.ID] = product
	s.sales = append(s.sales, sale)
	return &sale, &product, nil
}

func (s *Store) ListSales(_ context.Context, vendorID string, filter store.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0)
	for _, sale := range s.sales {
		if sale.VendorID != vendorID {
			continue
		}
		if filter.ProductID != "" && sale.ProductID != filter.ProductID {
			continue
		}
		if filter.From != nil && sale.SoldAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && sale.SoldAt.After(*filter.To) {
			continue
		}
		if p, ok := s.products[sale.ProductID]; ok {
			sale.Product = &domain.ProductRef{ID: p.ID, Name: p.Name, Category: p.Category, Unit: p.Unit, CostPrice: p.CostPrice}
		}
		out = append(out, sale)
	}
	slices.SortStableFunc(out, func(a, b domain.Sale) int {
		if c := b.SoldAt.Compare(a.SoldAt); c != 0 {
			return c
		}
		return cmpString(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) CreateWasteLog(_ context.Context, entry domain.WasteLog) (*domain.WasteLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[entry.ProductID]
	if !ok || p.VendorID != entry.VendorID {
		return nil, store.ErrNotFound
	}
	s.wasteLogs[entry.ID] = entry
	return &entry, nil
}

func (s *Store) GetWasteLog(_ context.Context, vendorID string, id string) (*domain.WasteLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.wasteLogs[id]
	if !ok || entry.VendorID != vendorID {
		return nil, store.ErrNotFound
	}
	entry.Product = s.wasteProductRef(entry.ProductID)
	return &entry, nil
}

func (s *Store) wasteProductRef(productID string) *domain.ProductRef {
	p, ok := s.products[productID]
	if !ok {
		return nil
	}
	return &domain.ProductRef{ID: p.ID, Name: p.Name, Category: p.Category, Unit: p.Unit, CostPrice: p.CostPrice}
}

func (s *Store) ListWasteLogs(_ context.Context, vendorID string, filter store.WasteFilter) ([]domain.WasteLog, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.WasteLog, 0)
	for _, entry := range s.wasteLogs {
		if entry.VendorID != vendorID {
			continue
		}
		if filter.ProductID != "" && entry.ProductID != filter.ProductID {
			continue
		}
		if filter.Reason != "" && entry.Reason != filter.Reason {
			continue
		}
		if filter.From != nil && entry.WasteDate.Before(filter.From.Time) {
			continue
		}
		if filter.To != nil && entry.WasteDate.After(filter.To.Time) {
			continue
		}
		entry.Product = s.wasteProductRef(entry.ProductID)
		matched = append(matched, entry)
	}
	slices.SortFunc(matched, func(a, b domain.WasteLog) int {
		if c := b.WasteDate.Compare(a.WasteDate.Time); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmpString(b.ID, a.ID)
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.WasteLog{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *Store) DeleteWasteLog(_ context.Context, vendorID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.wasteLogs[id]
	if !ok || entry.VendorID != vendorID {
		return store.ErrNotFound
	}
	delete(s.wasteLogs, id)
	return nil
}

func (s *Store) ReplacePredictions(_ context.Context, vendorID string, productID string, from domain.Date, predictions []domain.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.predictions[:0]
	for _, p := range s.predictions {
		if p.VendorID == vendorID && p.ProductID == productID && !p.ForecastDate.Before(from.Time) {
			continue
		}
		kept = append(kept, p)
	}
	s.predictions = append(kept, predictions...)
	return nil
}

func (s *Store) ListPredictions(_ context.Context, vendorID string, productID string, limit int) ([]domain.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Prediction, 0)
	for _, p := range s.predictions {
		if p.VendorID != vendorID || (productID != "" && p.ProductID != productID) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b domain.Prediction) int {
		if c := a.ForecastDate.Compare(b.ForecastDate.Time); c != 0 {
			return c
		}
		return cmpString(a.ProductID, b.ProductID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
