package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	AdjustmentAdd        = "add"
	AdjustmentRemove     = "remove"
	AdjustmentCorrection = "correction"
)

const (
	WasteExpired = "expired"
	WasteDamaged = "damaged"
	WasteExcess  = "excess"
	WasteOther   = "other"
)

const UncategorizedLabel = "Uncategorized"

type Actor struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type User struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Role          string    `json:"role" db:"role"`
	BusinessName  *string   `json:"businessName,omitempty" db:"business_name"`
	Location      *string   `json:"location,omitempty" db:"location"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type Product struct {
	ID           string          `json:"id" db:"id"`
	VendorID     string          `json:"vendorId" db:"vendor_id"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	Description  *string         `json:"description,omitempty" db:"description"`
	CostPrice    decimal.Decimal `json:"costPrice" db:"cost_price"`
	SellingPrice decimal.Decimal `json:"sellingPrice" db:"selling_price"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
	Unit         string          `json:"unit" db:"unit"`
	ExpiryDate   *Date           `json:"expiryDate,omitempty" db:"expiry_date"`
	SKU          *string         `json:"sku,omitempty" db:"sku"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`

	Margin         decimal.Decimal `json:"margin" db:"-"`
	IsExpiringSoon bool            `json:"isExpiringSoon" db:"-"`
}

// ProductRef is the product summary attached to ledger rows. CostPrice rides
// along for profit calculations and is never serialized.
type ProductRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Unit      string          `json:"unit"`
	CostPrice decimal.Decimal `json:"-"`
}

type InventoryAdjustment struct {
	ID        string          `json:"id" db:"id"`
	ProductID string          `json:"productId" db:"product_id"`
	VendorID  string          `json:"vendorId" db:"vendor_id"`
	Type      string          `json:"type" db:"type"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	Reason    string          `json:"reason" db:"reason"`
	Notes     *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`

	Product *ProductRef `json:"product,omitempty" db:"-"`
}

type Sale struct {
	ID        string          `json:"id" db:"id"`
	VendorID  string          `json:"vendorId" db:"vendor_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Total     decimal.Decimal `json:"total" db:"total"`
	SoldAt    time.Time       `json:"soldAt" db:"sold_at"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`

	Product *ProductRef `json:"product,omitempty" db:"-"`
}

type WasteLog struct {
	ID         string          `json:"id" db:"id"`
	ProductID  string          `json:"productId" db:"product_id"`
	VendorID   string          `json:"vendorId" db:"vendor_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	Reason     string          `json:"reason" db:"reason"`
	WasteDate  Date            `json:"wasteDate" db:"waste_date"`
	Notes      *string         `json:"notes,omitempty" db:"notes"`
	CostImpact decimal.Decimal `json:"costImpact" db:"cost_impact"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`

	Product *ProductRef `json:"product,omitempty" db:"-"`
}

type Prediction struct {
	ID                string          `json:"id" db:"id"`
	ProductID         string          `json:"productId" db:"product_id"`
	VendorID          string          `json:"vendorId" db:"vendor_id"`
	ForecastDate      Date            `json:"forecastDate" db:"forecast_date"`
	PredictedQuantity decimal.Decimal `json:"predictedQuantity" db:"predicted_quantity"`
	ConfidenceLevel   decimal.Decimal `json:"confidenceLevel" db:"confidence_level"`
	ModelUsed         string          `json:"modelUsed" db:"model_used"`
	Recommendations   StringList      `json:"recommendations" db:"recommendations"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

type SignupRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	BusinessName *string `json:"businessName,omitempty"`
	Location     *string `json:"location,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type ProfileUpdateRequest struct {
	BusinessName *string `json:"businessName,omitempty"`
	Location     *string `json:"location,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ProductCreateRequest struct {
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Description  *string          `json:"description,omitempty"`
	CostPrice    *decimal.Decimal `json:"costPrice"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         string           `json:"unit"`
	ExpiryDate   *Date            `json:"expiryDate,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
}

// ProductUpdateRequest applies only the fields that are present in the body.
// Zero values such as "0" or "" are real updates.
type ProductUpdateRequest struct {
	Name         *string          `json:"name,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CostPrice    *decimal.Decimal `json:"costPrice,omitempty"`
	SellingPrice *decimal.Decimal `json:"sellingPrice,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	ExpiryDate   *Date            `json:"expiryDate,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
	IsActive     *bool            `json:"isActive,omitempty"`
}

type AdjustmentRequest struct {
	ProductID string           `json:"productId"`
	Type      string           `json:"type"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Reason    string           `json:"reason"`
	Notes     *string          `json:"notes,omitempty"`
}

type AdjustmentResult struct {
	Adjustment InventoryAdjustment `json:"adjustment"`
	Product    Product             `json:"product"`
}

type LowStockSummary struct {
	LowStockCount    int       `json:"lowStockCount"`
	LowStockProducts []Product `json:"lowStockProducts"`
	ExpiringCount    int       `json:"expiringCount"`
	ExpiringProducts []Product `json:"expiringProducts"`
}

type SaleCreateRequest struct {
	ProductID string           `json:"productId"`
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	SoldAt    *time.Time       `json:"soldAt,omitempty"`
}

type SalesSummary struct {
	Count         int             `json:"count"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}

type WasteCreateRequest struct {
	ProductID string           `json:"productId"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Reason    string           `json:"reason"`
	WasteDate *Date            `json:"wasteDate,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type WastePage struct {
	WasteLogs  []WasteLog `json:"wasteLogs"`
	Pagination Pagination `json:"pagination"`
}

type WasteSummary struct {
	TotalWaste      int             `json:"totalWaste"`
	TotalCostImpact decimal.Decimal `json:"totalCostImpact"`
	TotalQuantity   decimal.Decimal `json:"totalQuantity"`
}

type WastedProduct struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostImpact  decimal.Decimal `json:"costImpact"`
	Count       int             `json:"count"`
}

type WasteStats struct {
	Summary           WasteSummary               `json:"summary"`
	WasteByReason     map[string]int             `json:"wasteByReason"`
	WasteByCategory   map[string]decimal.Decimal `json:"wasteByCategory"`
	TopWastedProducts []WastedProduct            `json:"topWastedProducts"`
}

type ProductWasteSummary struct {
	TotalWaste      decimal.Decimal `json:"totalWaste"`
	TotalCostImpact decimal.Decimal `json:"totalCostImpact"`
	Count           int             `json:"count"`
}

type ProductWaste struct {
	Product   Product             `json:"product"`
	WasteLogs []WasteLog          `json:"wasteLogs"`
	Summary   ProductWasteSummary `json:"summary"`
}

type DashboardStats struct {
	TodaysRevenue decimal.Decimal `json:"todaysRevenue"`
	RevenueChange float64         `json:"revenueChange"`
	TotalProducts int             `json:"totalProducts"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type AnalyticsSummary struct {
	TodaysRevenue decimal.Decimal `json:"todaysRevenue"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	TotalSales    int             `json:"totalSales"`
	TotalProducts int             `json:"totalProducts"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	RevenueChange float64         `json:"revenueChange"`
}

type CategoryTotals struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	Category      string          `json:"category"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	SalesCount    int             `json:"salesCount"`
}

type TrendPoint struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	SalesCount int             `json:"salesCount"`
}

type SalesAnalytics struct {
	Summary         AnalyticsSummary          `json:"summary"`
	SalesByCategory map[string]CategoryTotals `json:"salesByCategory"`
	TopProducts     []TopProduct              `json:"topProducts"`
	SalesTrend      []TrendPoint              `json:"salesTrend"`
	Period          Period                    `json:"period"`
}

type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type PeriodTotals struct {
	Revenue    decimal.Decimal `json:"revenue"`
	SalesCount int             `json:"salesCount"`
}

type MonthlyComparison struct {
	CurrentMonth PeriodTotals `json:"currentMonth"`
	LastMonth    PeriodTotals `json:"lastMonth"`
	Change       float64      `json:"change"`
}
