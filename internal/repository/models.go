package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/item"
)

type Cart struct {
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	ItemID    uuid.UUID       `json:"itemId"`
	ItemType  item.Type       `json:"type"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl"`
	SellerID  uuid.UUID       `json:"sellerId"`
	Quantity  int32           `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type OrderLine struct {
	ItemID   uuid.UUID       `json:"itemId"`
	Type     item.Type       `json:"type"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	SellerID uuid.UUID       `json:"sellerId"`
	Quantity int32           `json:"quantity"`
}

// Revenue is quantity times unit price.
func (l OrderLine) Revenue() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

type Address struct {
	Type    string `json:"type"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Payment struct {
	CardLast4 string `json:"cardLast4"`
	Expiry    string `json:"expiry"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Items           []OrderLine     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	BillingAddress  Address         `json:"billingAddress"`
	ShippingAddress Address         `json:"shippingAddress"`
	Payment         Payment         `json:"payment"`
	// CreatedAt is zero for orders persisted without a timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	IsSeller  bool      `json:"isSeller"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PasswordResetToken struct {
	Token     uuid.UUID `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ItemID    uuid.UUID `json:"itemId"`
	ItemType  item.Type `json:"type"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
