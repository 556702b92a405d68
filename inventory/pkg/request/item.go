package request

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UploadItem carries the fields of both variants. Author is read for books,
// Manufacturer and Category for home items.
type UploadItem struct {
	Title         string          `validate:"required"       json:"title"`
	Description   string          `                          json:"description"`
	Price         decimal.Decimal `validate:"gte=0"          json:"price"`
	ImageURL      string          `                          json:"imageUrl"`
	TotalQuantity int32           `validate:"gte=0"          json:"totalQuantity"`
	Author        string          `                          json:"author"`
	Manufacturer  string          `                          json:"manufacturer"`
	Category      string          `                          json:"category"`
}

func (u UploadItem) MarshalZerologObject(e *zerolog.Event) {
	e.Str("title", u.Title).
		Str("price", u.Price.String()).
		Int32("totalQuantity", u.TotalQuantity)
}

type Review struct {
	Reviewer string  `validate:"required"       json:"reviewer"`
	Comment  string  `                          json:"comment"`
	Rating   float64 `validate:"gte=0,lte=5"    json:"rating"`
}

func (r Review) MarshalZerologObject(e *zerolog.Event) {
	e.Str("reviewer", r.Reviewer).Float64("rating", r.Rating)
}
