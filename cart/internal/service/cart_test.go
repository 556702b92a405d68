package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/marketplace/cart/internal/cache"
	"github.com/Alturino/marketplace/cart/pkg/request"
	"github.com/Alturino/marketplace/cart/pkg/response"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
)

type fixture struct {
	store   *repositorytest.Store
	mr      *miniredis.Miniredis
	service *CartService
	book    item.Book
	home    item.HomeItem
}

func setup(t *testing.T, bookQuantity, homeQuantity int32) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := repositorytest.NewStore()
	c := context.Background()
	sellerId := uuid.New()

	book := item.Book{
		Listing: item.Listing{
			ID:            uuid.New(),
			Title:         "Dune",
			Price:         decimal.RequireFromString("12.50"),
			ImageURL:      "https://img.example.com/dune.png",
			SellerID:      sellerId,
			TotalQuantity: bookQuantity,
		},
		Author: "Frank Herbert",
	}
	home := item.HomeItem{
		Listing: item.Listing{
			ID:            uuid.New(),
			Title:         "Desk Lamp",
			Price:         decimal.RequireFromString("30"),
			SellerID:      sellerId,
			TotalQuantity: homeQuantity,
		},
		Manufacturer: "Ikea",
		Category:     "Lighting",
	}
	_, err := store.InsertItem(c, book)
	require.NoError(t, err)
	_, err = store.InsertItem(c, home)
	require.NoError(t, err)

	return fixture{
		store:   store,
		mr:      mr,
		service: NewCartService(store, cache.NewRedisCache(client, time.Minute)),
		book:    book,
		home:    home,
	}
}

func (f fixture) quantity(t *testing.T, typ item.Type, id uuid.UUID) int32 {
	t.Helper()
	found, err := f.store.FindItemById(context.Background(), typ, id)
	require.NoError(t, err)
	return found.Details().TotalQuantity
}

func TestAddToCart(t *testing.T) {
	tests := []struct {
		name              string
		bookQuantity      int32
		param             func(f fixture) request.AddToCart
		expected          response.Message
		expectedErr       error
		expectedRemaining int32
		expectedLines     int
	}{
		{
			name:         "given available book should reserve one unit",
			bookQuantity: 2,
			param: func(f fixture) request.AddToCart {
				return request.AddToCart{ItemId: f.book.ID, Type: "book"}
			},
			expected:          response.Message{Success: true, Message: "Book added to the cart!"},
			expectedRemaining: 1,
			expectedLines:     1,
		},
		{
			name:         "given upper case type should be accepted",
			bookQuantity: 1,
			param: func(f fixture) request.AddToCart {
				return request.AddToCart{ItemId: f.book.ID, Type: "BOOK"}
			},
			expected:          response.Message{Success: true, Message: "Book added to the cart!"},
			expectedRemaining: 0,
			expectedLines:     1,
		},
		{
			name:         "given sold out book should return out of stock",
			bookQuantity: 0,
			param: func(f fixture) request.AddToCart {
				return request.AddToCart{ItemId: f.book.ID, Type: "book"}
			},
			expected:          response.Message{Success: false, Message: response.MessageItemNotAvailable},
			expectedErr:       inErrors.ErrOutOfStock,
			expectedRemaining: 0,
		},
		{
			name:         "given unknown book should return not found",
			bookQuantity: 3,
			param: func(f fixture) request.AddToCart {
				return request.AddToCart{ItemId: uuid.New(), Type: "book"}
			},
			expected:          response.Message{Success: false, Message: "Book not found."},
			expectedErr:       inErrors.ErrNotFound,
			expectedRemaining: 3,
		},
		{
			name:         "given unsupported type should return invalid input",
			bookQuantity: 3,
			param: func(f fixture) request.AddToCart {
				return request.AddToCart{ItemId: f.book.ID, Type: "garden"}
			},
			expected:          response.Message{Success: false, Message: "Unsupported item type: garden"},
			expectedErr:       inErrors.ErrInvalidInput,
			expectedRemaining: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.bookQuantity, 1)
			c := context.Background()
			userId := uuid.New()

			actual, err := f.service.AddToCart(c, userId, tt.param(f))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, actual)
			assert.Equal(t, tt.expectedRemaining, f.quantity(t, item.TypeBook, f.book.ID))

			lines, err := f.store.FindCartItemsByUserId(c, userId)
			require.NoError(t, err)
			assert.Len(t, lines, tt.expectedLines)
		})
	}
}

func TestAddToCartTwiceIncrementsQuantity(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()

	for range 2 {
		_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
		require.NoError(t, err)
	}

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].Quantity)
	assert.Equal(t, "Dune", items[0].Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(items[0].Price))
	assert.Equal(t, f.book.SellerID, items[0].SellerID)
	assert.EqualValues(t, 3, f.quantity(t, item.TypeBook, f.book.ID))
}

func TestAddToCartNeverOversells(t *testing.T) {
	const stock = 3
	f := setup(t, stock, 0)
	c := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		outOfStock int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AddToCart(c, uuid.New(), request.AddToCart{ItemId: f.book.ID, Type: "book"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, inErrors.ErrOutOfStock):
				outOfStock++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, successes)
	assert.Equal(t, 10-stock, outOfStock)
	assert.EqualValues(t, 0, f.quantity(t, item.TypeBook, f.book.ID))
}

func TestAddToCartRollsBackOnFailure(t *testing.T) {
	f := setup(t, 2, 1)
	c := context.Background()
	userId := uuid.New()
	f.store.Fail("UpsertCartItem", inErrors.ErrUnexpected)

	actual, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	assert.ErrorIs(t, err, inErrors.ErrUnexpected)
	assert.False(t, actual.Success)
	assert.EqualValues(t, 2, f.quantity(t, item.TypeBook, f.book.ID))
}

func TestRemoveFromCart(t *testing.T) {
	tests := []struct {
		name              string
		adds              int
		param             func(f fixture) request.RemoveFromCart
		expected          response.Message
		expectedErr       error
		expectedRemaining int32
		expectedLines     int
	}{
		{
			name: "given line with quantity two should reduce quantity",
			adds: 2,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{ItemId: f.book.ID, Type: "book"}
			},
			expected:          response.Message{Success: true, Message: response.MessageItemQuantityReduced},
			expectedRemaining: 4,
			expectedLines:     1,
		},
		{
			name: "given last unit in cart should delete cart",
			adds: 1,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{ItemId: f.book.ID, Type: "book"}
			},
			expected:          response.Message{Success: true, Message: response.MessageCartDeletedAsEmpty},
			expectedRemaining: 5,
			expectedLines:     0,
		},
		{
			name: "given item not in cart should return not found",
			adds: 1,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{ItemId: f.home.ID, Type: "home"}
			},
			expected:          response.Message{Success: false, Message: response.MessageItemNotInCart},
			expectedErr:       inErrors.ErrNotFound,
			expectedRemaining: 4,
			expectedLines:     1,
		},
		{
			name: "given no cart should return cart not found",
			adds: 0,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{ItemId: f.book.ID, Type: "book"}
			},
			expected:          response.Message{Success: false, Message: response.MessageCartNotFound},
			expectedErr:       inErrors.ErrNotFound,
			expectedRemaining: 5,
		},
		{
			name: "given only item id should return invalid input",
			adds: 1,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{ItemId: f.book.ID}
			},
			expected:          response.Message{Success: false, Message: response.MessageInvalidCartItem},
			expectedErr:       inErrors.ErrInvalidInput,
			expectedRemaining: 4,
			expectedLines:     1,
		},
		{
			name: "given empty item should delete the whole cart without restock",
			adds: 2,
			param: func(f fixture) request.RemoveFromCart {
				return request.RemoveFromCart{}
			},
			expected:          response.Message{Success: true, Message: response.MessageCartDeleted},
			expectedRemaining: 3,
			expectedLines:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, 5, 1)
			c := context.Background()
			userId := uuid.New()
			for range tt.adds {
				_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
				require.NoError(t, err)
			}

			actual, err := f.service.RemoveFromCart(c, userId, tt.param(f))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, actual)
			assert.Equal(t, tt.expectedRemaining, f.quantity(t, item.TypeBook, f.book.ID))

			lines, err := f.store.FindCartItemsByUserId(c, userId)
			require.NoError(t, err)
			assert.Len(t, lines, tt.expectedLines)
		})
	}
}

func TestRemoveFromCartKeepsCartWithOtherLines(t *testing.T) {
	f := setup(t, 5, 5)
	c := context.Background()
	userId := uuid.New()
	_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	_, err = f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.home.ID, Type: "home"})
	require.NoError(t, err)

	actual, err := f.service.RemoveFromCart(c, userId, request.RemoveFromCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	assert.Equal(t, response.MessageItemQuantityReduced, actual.Message)

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.TypeHome, items[0].Type)
}

func TestClearCart(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()

	_, err := f.service.ClearCart(c, userId)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	_, err = f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)

	actual, err := f.service.ClearCart(c, userId)
	require.NoError(t, err)
	assert.Equal(t, response.Message{Success: true, Message: response.MessageCartDeleted}, actual)
	assert.EqualValues(t, 4, f.quantity(t, item.TypeBook, f.book.ID))

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetAllCartItemsForUserUsesCache(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()

	_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(cache.CacheKey(userId)))

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, f.mr.Exists(cache.CacheKey(userId)))

	f.store.Fail("FindCartItemsByUserId", inErrors.ErrUnexpected)
	cached, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Equal(t, items, cached)
}

func TestCartMutationInvalidatesCache(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()

	_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	_, err = f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(cache.CacheKey(userId)))

	_, err = f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(cache.CacheKey(userId)))

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].Quantity)
}

func TestGetAllCartItemsForUserFallsBackWhenCacheIsDown(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()

	_, err := f.service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)
	f.mr.Close()

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type interleavedCache struct {
	cache.CartCache
	beforeFill func()
}

func (i interleavedCache) Fill(c context.Context, userId uuid.UUID, version int64, items []repository.CartItem) error {
	i.beforeFill()
	return i.CartCache.Fill(c, userId, version, items)
}

func TestClearDuringCacheFillIsNotOverwritten(t *testing.T) {
	f := setup(t, 5, 1)
	c := context.Background()
	userId := uuid.New()
	client := redis.NewClient(&redis.Options{Addr: f.mr.Addr()})
	t.Cleanup(func() { client.Close() })

	var service *CartService
	cleared := false
	service = NewCartService(f.store, interleavedCache{
		CartCache: cache.NewRedisCache(client, time.Minute),
		beforeFill: func() {
			if cleared {
				return
			}
			cleared = true
			_, err := service.ClearCart(c, userId)
			require.NoError(t, err)
		},
	})

	_, err := service.AddToCart(c, userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)

	items, err := service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, cleared)
	assert.False(t, f.mr.Exists(cache.CacheKey(userId)))

	items, err = service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.True(t, f.mr.Exists(cache.CacheKey(userId)))
}

func TestGetAllCartItemsForUserOutlivesCanceledCaller(t *testing.T) {
	f := setup(t, 5, 1)
	userId := uuid.New()

	_, err := f.service.AddToCart(context.Background(), userId, request.AddToCart{ItemId: f.book.ID, Type: "book"})
	require.NoError(t, err)

	c, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := f.service.GetAllCartItemsForUser(c, userId)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.True(t, f.mr.Exists(cache.CacheKey(userId)))
}
