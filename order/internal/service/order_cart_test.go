package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartCmd "github.com/Alturino/marketplace/cart/cmd"
	cartRequest "github.com/Alturino/marketplace/cart/pkg/request"
	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/order/pkg/request"
)

func TestCreateOrderEmptiesTheCart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := context.Background()
	store := repositorytest.NewStore()
	cartService := cartCmd.AttachCartService(c, mux.NewRouter(), store, client, config.Cache{TTL: time.Minute})
	orderService := NewOrderService(store, cartService)

	book := item.Book{Listing: item.Listing{
		ID:            uuid.New(),
		Title:         "Dune",
		Price:         decimal.NewFromInt(10),
		SellerID:      uuid.New(),
		TotalQuantity: 3,
	}}
	_, err := store.InsertItem(c, book)
	require.NoError(t, err)

	userId := uuid.New()
	for range 2 {
		_, err := cartService.AddToCart(c, userId, cartRequest.AddToCart{ItemId: book.ID, Type: "book"})
		require.NoError(t, err)
	}
	items, err := cartService.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.Len(t, items, 1)

	actual, err := orderService.CreateOrder(c, userId, validOrder(
		request.OrderLine{ItemId: book.ID, Type: "book", Name: "Dune", Price: decimal.NewFromInt(10), Quantity: 2},
	))
	require.NoError(t, err)
	assert.True(t, actual.Success)

	items, err = cartService.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Empty(t, items)

	orders, err := orderService.GetOrdersByUserId(c, userId)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
