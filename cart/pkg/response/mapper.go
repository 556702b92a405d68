package response

import (
	"github.com/Alturino/marketplace/internal/repository"
)

func FromCartItem(i repository.CartItem) CartItem {
	return CartItem{
		ItemID:   i.ItemID,
		Type:     i.ItemType,
		Name:     i.Name,
		Price:    i.Price,
		ImageURL: i.ImageURL,
		SellerID: i.SellerID,
		Quantity: i.Quantity,
	}
}

func FromCartItems(items []repository.CartItem) []CartItem {
	mapped := make([]CartItem, len(items))
	for i, it := range items {
		mapped[i] = FromCartItem(it)
	}
	return mapped
}
