package request

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AddWishlistItem struct {
	ItemId uuid.UUID `validate:"required" json:"itemId"`
	Type   string    `validate:"required" json:"type"`
}

func (a AddWishlistItem) MarshalZerologObject(e *zerolog.Event) {
	e.Str("itemId", a.ItemId.String()).Str("type", a.Type)
}
