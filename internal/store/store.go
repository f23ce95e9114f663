package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"vendorhub/backend/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type ProductFilter struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// SaleFilter bounds are inclusive. Nil bounds are open.
type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	ProductID string
}

// WasteFilter bounds are inclusive calendar days. Limit <= 0 returns every row.
type WasteFilter struct {
	From      *domain.Date
	To        *domain.Date
	ProductID string
	Reason    string
	Limit     int
	Offset    int
}

type Repository interface {
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, vendorID string, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, vendorID string, filter ProductFilter) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, vendorID string, id string) error
	CountProducts(ctx context.Context, vendorID string) (int, error)
	ListLowStock(ctx context.Context, vendorID string, threshold decimal.Decimal) ([]domain.Product, error)
	ListExpiring(ctx context.Context, vendorID string, until domain.Date) ([]domain.Product, error)

	// AdjustStock locks the product row, applies the adjustment and appends
	// the audit record in one transaction.
	AdjustStock(ctx context.Context, adj domain.InventoryAdjustment) (*domain.InventoryAdjustment, *domain.Product, error)
	ListAdjustments(ctx context.Context, vendorID string, productID string) ([]domain.InventoryAdjustment, error)

	// CreateSale locks the product row, decrements stock and inserts the sale
	// in one transaction.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, *domain.Product, error)
	ListSales(ctx context.Context, vendorID string, filter SaleFilter) ([]domain.Sale, error)

	CreateWasteLog(ctx context.Context, entry domain.WasteLog) (*domain.WasteLog, error)
	GetWasteLog(ctx context.Context, vendorID string, id string) (*domain.WasteLog, error)
	ListWasteLogs(ctx context.Context, vendorID string, filter WasteFilter) ([]domain.WasteLog, int, error)
	DeleteWasteLog(ctx context.Context, vendorID string, id string) error

	// ReplacePredictions drops the product's predictions dated on or after
	// from and stores the new set.
	ReplacePredictions(ctx context.Context, vendorID string, productID string, from domain.Date, predictions []domain.Prediction) error
	ListPredictions(ctx context.Context, vendorID string, productID string, limit int) ([]domain.Prediction, error)
}
