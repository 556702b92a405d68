package request

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type OrderLine struct {
	ItemId   uuid.UUID       `validate:"required"       json:"itemId"`
	Type     string          `validate:"required"       json:"type"`
	Name     string          `                          json:"name"`
	Price    decimal.Decimal `validate:"gte=0"          json:"price"`
	ImageURL string          `                          json:"imageUrl"`
	Quantity int32           `validate:"required,gte=1" json:"quantity"`
}

type Address struct {
	Type    string `                   json:"type"`
	Street  string `validate:"required" json:"street"`
	City    string `validate:"required" json:"city"`
	State   string `                   json:"state"`
	Zip     string `validate:"required" json:"zip"`
	Country string `validate:"required" json:"country"`
}

// Payment carries the raw card details. Only the last four digits and the
// expiry are ever persisted.
type Payment struct {
	CardNumber string `validate:"required,numeric,min=12,max=19" json:"cardNumber"`
	Expiry     string `validate:"required"                        json:"expiry"`
	Cvv        string `validate:"required,numeric,min=3,max=4"   json:"cvv"`
}

type CreateOrder struct {
	Items           []OrderLine     `validate:"required,gt=0,dive" json:"items"`
	TotalPrice      decimal.Decimal `                              json:"totalPrice"`
	BillingAddress  Address         `validate:"required"           json:"billing"`
	ShippingAddress Address         `validate:"required"           json:"shipping"`
	Payment         Payment         `validate:"required"           json:"payment"`
}

func (o CreateOrder) MarshalZerologObject(e *zerolog.Event) {
	e.Int("itemsCount", len(o.Items)).Str("totalPrice", o.TotalPrice.String())
}
