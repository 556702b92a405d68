package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
)

const (
	MessageItemAdded       = "Item added to the wishlist."
	MessageAlreadyInList   = "Item is already in the wishlist."
	MessageItemRemoved     = "Wishlist item removed successfully"
	MessageWishlistMissing = "Wishlist item not found."
)

type Message struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Item    *WishlistItem `json:"item,omitempty"`
}

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"itemId"`
	Type      item.Type `json:"type"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromWishlistItem(w repository.WishlistItem) WishlistItem {
	return WishlistItem{
		ID:        w.ID,
		ItemID:    w.ItemID,
		Type:      w.ItemType,
		Name:      w.Name,
		ImageURL:  w.ImageURL,
		CreatedAt: w.CreatedAt,
	}
}

func FromWishlistItems(items []repository.WishlistItem) []WishlistItem {
	resp := make([]WishlistItem, 0, len(items))
	for _, w := range items {
		resp = append(resp, FromWishlistItem(w))
	}
	return resp
}
