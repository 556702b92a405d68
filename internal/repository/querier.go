package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/item"
)

type UpdateItemReviewsParams struct {
	ID      uuid.UUID
	Type    item.Type
	Reviews []item.Review
	Ratings float64
}

type UpsertCartItemParams struct {
	UserID   uuid.UUID
	ItemID   uuid.UUID
	ItemType item.Type
	Name     string
	Price    decimal.Decimal
	ImageURL string
	SellerID uuid.UUID
}

type CartItemKey struct {
	UserID   uuid.UUID
	ItemID   uuid.UUID
	ItemType item.Type
}

type UpdateCartItemQuantityParams struct {
	CartItemKey
	Quantity int32
}

type InsertUserParams struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	IsSeller  bool
	CreatedAt time.Time
}

type UserConflicts struct {
	Username bool
	Email    bool
	Phone    bool
}

func (u UserConflicts) Any() bool {
	return u.Username || u.Email || u.Phone
}

type Querier interface {
	InsertItem(c context.Context, i item.Item) (item.Item, error)
	FindItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error)
	LockItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error)
	FindItemByTitleAndSellerId(c context.Context, t item.Type, title string, sellerId uuid.UUID) (item.Item, error)
	FindItems(c context.Context, t item.Type) ([]item.Item, error)
	FindItemsBySellerId(c context.Context, t item.Type, sellerId uuid.UUID) ([]item.Item, error)
	DecrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error)
	IncrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error)
	UpdateItemReviews(c context.Context, arg UpdateItemReviewsParams) (item.Item, error)

	UpsertCart(c context.Context, userId uuid.UUID) (Cart, error)
	LockCartByUserId(c context.Context, userId uuid.UUID) (Cart, error)
	DeleteCartByUserId(c context.Context, userId uuid.UUID) (int64, error)
	FindCartItemsByUserId(c context.Context, userId uuid.UUID) ([]CartItem, error)
	UpsertCartItem(c context.Context, arg UpsertCartItemParams) (CartItem, error)
	UpdateCartItemQuantity(c context.Context, arg UpdateCartItemQuantityParams) (CartItem, error)
	DeleteCartItem(c context.Context, arg CartItemKey) (int64, error)

	InsertOrder(c context.Context, arg Order) (Order, error)
	FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]Order, error)
	FindOrders(c context.Context) ([]Order, error)

	InsertUser(c context.Context, arg InsertUserParams) (User, error)
	FindUserById(c context.Context, id uuid.UUID) (User, error)
	FindUserByUsername(c context.Context, username string) (User, error)
	FindUserByEmail(c context.Context, email string) (User, error)
	FindUserConflicts(c context.Context, username, email, phone string) (UserConflicts, error)
	UpdateUserPassword(c context.Context, id uuid.UUID, password string) (User, error)

	InsertPasswordResetToken(c context.Context, arg PasswordResetToken) (PasswordResetToken, error)
	FindPasswordResetToken(c context.Context, token uuid.UUID) (PasswordResetToken, error)
	DeletePasswordResetToken(c context.Context, token uuid.UUID) (int64, error)

	InsertWishlistItem(c context.Context, arg WishlistItem) (WishlistItem, error)
	FindWishlistItemById(c context.Context, userId uuid.UUID, id uuid.UUID) (WishlistItem, error)
	FindWishlistItemsByUserId(c context.Context, userId uuid.UUID) ([]WishlistItem, error)
	DeleteWishlistItem(c context.Context, userId uuid.UUID, id uuid.UUID) (int64, error)
}

var _ Querier = (*Queries)(nil)
