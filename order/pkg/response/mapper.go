package response

import (
	"time"

	"github.com/Alturino/marketplace/internal/repository"
)

func FromOrderLine(l repository.OrderLine) OrderLine {
	return OrderLine{
		ItemID:   l.ItemID,
		Type:     l.Type,
		Name:     l.Name,
		Price:    l.Price,
		ImageURL: l.ImageURL,
		SellerID: l.SellerID,
		Quantity: l.Quantity,
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func FromOrder(o repository.Order) Order {
	lines := make([]OrderLine, len(o.Items))
	for i, l := range o.Items {
		lines[i] = FromOrderLine(l)
	}
	return Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           lines,
		TotalPrice:      o.TotalPrice,
		BillingAddress:  o.BillingAddress,
		ShippingAddress: o.ShippingAddress,
		Payment:         o.Payment,
		CreatedAt:       timePtr(o.CreatedAt),
	}
}

// FromOrders keeps a nil input nil.
func FromOrders(orders []repository.Order) []Order {
	if orders == nil {
		return nil
	}
	mapped := make([]Order, len(orders))
	for i, o := range orders {
		mapped[i] = FromOrder(o)
	}
	return mapped
}

func FromSoldLine(o repository.Order, l repository.OrderLine) SoldItem {
	return SoldItem{
		OrderLine: FromOrderLine(l),
		OrderID:   o.ID,
		BuyerID:   o.UserID,
		SoldAt:    timePtr(o.CreatedAt),
	}
}
