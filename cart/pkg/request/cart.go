package request

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AddToCart struct {
	ItemId uuid.UUID `validate:"required" json:"itemId"`
	Type   string    `validate:"required" json:"type"`
}

func (a AddToCart) MarshalZerologObject(e *zerolog.Event) {
	e.Str("itemId", a.ItemId.String()).Str("type", a.Type)
}

// RemoveFromCart with a zero ItemId and an empty Type removes the whole cart.
type RemoveFromCart struct {
	ItemId uuid.UUID `json:"itemId"`
	Type   string    `json:"type"`
}

func (r RemoveFromCart) WholeCart() bool {
	return r.ItemId == uuid.Nil && r.Type == ""
}

func (r RemoveFromCart) MarshalZerologObject(e *zerolog.Event) {
	e.Str("itemId", r.ItemId.String()).Str("type", r.Type).Bool("wholeCart", r.WholeCart())
}
