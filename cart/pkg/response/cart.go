package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/item"
)

const (
	MessageCartNotFound        = "Cart not found for the user."
	MessageItemNotInCart       = "Item not found in the cart."
	MessageItemQuantityReduced = "Item quantity reduced successfully."
	MessageCartDeletedAsEmpty  = "Cart deleted as it became empty."
	MessageCartDeleted         = "Entire cart deleted successfully."
	MessageItemNotAvailable    = "Item not available anymore!"
	MessageInvalidCartItem     = "Item id and type are both required."
	MessageUnexpected          = "Something went wrong, please try again."
)

// Message is the outcome of a cart mutation.
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CartItem struct {
	ItemID   uuid.UUID       `json:"itemId"`
	Type     item.Type       `json:"type"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	SellerID uuid.UUID       `json:"sellerId"`
	Quantity int32           `json:"quantity"`
}
