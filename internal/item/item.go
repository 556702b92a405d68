package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/marketplace/internal/errors"
)

type Type string

const (
	TypeBook Type = "book"
	TypeHome Type = "home"
)

var Types = []Type{TypeBook, TypeHome}

// ParseType accepts the item type in any letter case.
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("item type is required with error=%w", inErrors.ErrInvalidInput)
	}
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBook, TypeHome:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported item type=%s with error=%w", s, inErrors.ErrInvalidInput)
	}
}

func (t Type) String() string {
	return string(t)
}

// Label is the human readable name used in cart messages.
func (t Type) Label() string {
	switch t {
	case TypeBook:
		return "Book"
	case TypeHome:
		return "Home item"
	default:
		return "Item"
	}
}

type Listing struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl"`
	SellerID      uuid.UUID       `json:"sellerId"`
	TotalQuantity int32           `json:"totalQuantity"`
	Ratings       float64         `json:"ratings"`
	Reviews       []Review        `json:"reviews"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Item is implemented by every inventory variant.
type Item interface {
	Type() Type
	Details() Listing
}

type Book struct {
	Listing
	Author string `json:"author"`
}

func (b Book) Type() Type { return TypeBook }

func (b Book) Details() Listing { return b.Listing }

type HomeItem struct {
	Listing
	Manufacturer string `json:"manufacturer"`
	Category     string `json:"category"`
}

func (h HomeItem) Type() Type { return TypeHome }

func (h HomeItem) Details() Listing { return h.Listing }

// WithListing returns a copy of i carrying l as its shared fields.
func WithListing(i Item, l Listing) Item {
	switch v := i.(type) {
	case Book:
		v.Listing = l
		return v
	case HomeItem:
		v.Listing = l
		return v
	default:
		return i
	}
}
