package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/wishlist/pkg/request"
	"github.com/Alturino/marketplace/wishlist/pkg/response"
)

func setup(t *testing.T) (*WishlistService, *repositorytest.Store, item.Book) {
	t.Helper()
	store := repositorytest.NewStore()
	book := item.Book{
		Listing: item.Listing{
			ID:            uuid.New(),
			Title:         "Dune",
			Price:         decimal.NewFromInt(10),
			ImageURL:      "https://img.example.com/dune.png",
			SellerID:      uuid.New(),
			TotalQuantity: 1,
		},
		Author: "Frank Herbert",
	}
	_, err := store.InsertItem(context.Background(), book)
	require.NoError(t, err)
	return NewWishlistService(store), store, book
}

func TestAddWishlistItem(t *testing.T) {
	tests := []struct {
		name            string
		twice           bool
		param           func(book item.Book) request.AddWishlistItem
		expectedErr     error
		expectedMessage string
	}{
		{
			name: "given existing book should snapshot its listing",
			param: func(book item.Book) request.AddWishlistItem {
				return request.AddWishlistItem{ItemId: book.ID, Type: "Book"}
			},
			expectedMessage: response.MessageItemAdded,
		},
		{
			name:  "given item already saved should conflict",
			twice: true,
			param: func(book item.Book) request.AddWishlistItem {
				return request.AddWishlistItem{ItemId: book.ID, Type: "book"}
			},
			expectedErr:     inErrors.ErrConflict,
			expectedMessage: response.MessageAlreadyInList,
		},
		{
			name: "given unknown item should return not found",
			param: func(book item.Book) request.AddWishlistItem {
				return request.AddWishlistItem{ItemId: uuid.New(), Type: "home"}
			},
			expectedErr:     inErrors.ErrNotFound,
			expectedMessage: "Home item not found.",
		},
		{
			name: "given unsupported type should return invalid input",
			param: func(book item.Book) request.AddWishlistItem {
				return request.AddWishlistItem{ItemId: book.ID, Type: "garden"}
			},
			expectedErr:     inErrors.ErrInvalidInput,
			expectedMessage: "Unsupported item type: garden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, book := setup(t)
			c := context.Background()
			userId := uuid.New()

			if tt.twice {
				_, err := service.AddWishlistItem(c, userId, tt.param(book))
				require.NoError(t, err)
			}

			actual, err := service.AddWishlistItem(c, userId, tt.param(book))
			assert.Equal(t, tt.expectedMessage, actual.Message)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.False(t, actual.Success)
				assert.Nil(t, actual.Item)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, actual.Item)
			assert.Equal(t, book.ID, actual.Item.ItemID)
			assert.Equal(t, item.TypeBook, actual.Item.Type)
			assert.Equal(t, "Dune", actual.Item.Name)
			assert.Equal(t, book.ImageURL, actual.Item.ImageURL)
		})
	}
}

func TestWishlistIsScopedToTheUser(t *testing.T) {
	service, _, book := setup(t)
	c := context.Background()
	owner, other := uuid.New(), uuid.New()

	added, err := service.AddWishlistItem(c, owner, request.AddWishlistItem{ItemId: book.ID, Type: "book"})
	require.NoError(t, err)
	id := added.Item.ID

	items, err := service.GetWishlistItemsByUserId(c, owner)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = service.GetWishlistItemsByUserId(c, other)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	found, err := service.GetWishlistItemById(c, owner, id)
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ItemID)

	_, err = service.GetWishlistItemById(c, other, id)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	removed, err := service.RemoveWishlistItem(c, other, id)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
	assert.Equal(t, response.MessageWishlistMissing, removed.Message)
}

func TestRemoveWishlistItem(t *testing.T) {
	service, store, book := setup(t)
	c := context.Background()
	userId := uuid.New()

	added, err := service.AddWishlistItem(c, userId, request.AddWishlistItem{ItemId: book.ID, Type: "book"})
	require.NoError(t, err)

	actual, err := service.RemoveWishlistItem(c, userId, added.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, response.Message{Success: true, Message: response.MessageItemRemoved}, actual)

	items, err := store.FindWishlistItemsByUserId(c, userId)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = service.RemoveWishlistItem(c, userId, added.Item.ID)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)
}

func TestRemoveWishlistItemReportsStoreFailure(t *testing.T) {
	service, store, _ := setup(t)
	store.Fail("DeleteWishlistItem", inErrors.ErrUnexpected)

	actual, err := service.RemoveWishlistItem(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrUnexpected)
	assert.False(t, actual.Success)
	assert.NotEqual(t, response.MessageWishlistMissing, actual.Message)
}
