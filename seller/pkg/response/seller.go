package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/item"
)

type SalesAnalytics struct {
	TotalBuyers       int             `json:"totalBuyers"`
	TotalPurchases    int64           `json:"totalPurchases"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type TopProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Type     item.Type       `json:"type"`
	ImageURL string          `json:"imageUrl"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	Name    string          `json:"name"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesByCategory struct {
	Categories map[string]CategorySales `json:"categories"`
}

// RevenueOverTime holds two parallel arrays ordered chronologically.
type RevenueOverTime struct {
	TimeLabels    []string          `json:"timeLabels"`
	RevenueValues []decimal.Decimal `json:"revenueValues"`
}

type SellerStatistics struct {
	TotalBuyers    int             `json:"totalBuyers"`
	TotalPurchases int64           `json:"totalPurchases"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PurchasedBooks []item.Book     `json:"purchasedBooks"`
}
