package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
)

const (
	MessageOrderCreated   = "Order created successfully"
	MessageOrderFailedFmt = "Failed to create order: %s"
)

type OrderLine struct {
	ItemID   uuid.UUID       `json:"itemId"`
	Type     item.Type       `json:"type"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	SellerID uuid.UUID       `json:"sellerId"`
	Quantity int32           `json:"quantity"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"userId"`
	Items           []OrderLine        `json:"items"`
	TotalPrice      decimal.Decimal    `json:"totalPrice"`
	BillingAddress  repository.Address `json:"billing"`
	ShippingAddress repository.Address `json:"shipping"`
	Payment         repository.Payment `json:"payment"`
	CreatedAt       *time.Time         `json:"createdAt"`
}

// OrderResult is the outcome of CreateOrder. Order is nil when Success is false.
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// SoldItem is one order line sold by a seller, stamped with the order time.
type SoldItem struct {
	OrderLine
	OrderID uuid.UUID  `json:"orderId"`
	BuyerID uuid.UUID  `json:"buyerId"`
	SoldAt  *time.Time `json:"soldAt"`
}
