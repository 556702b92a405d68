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
	"github.com/Alturino/marketplace/inventory/pkg/request"
	"github.com/Alturino/marketplace/inventory/pkg/response"
)

func TestUpload(t *testing.T) {
	seller := uuid.New()
	dune := request.UploadItem{
		Title:         "Dune",
		Author:        "Frank Herbert",
		Price:         decimal.RequireFromString("12.50"),
		TotalQuantity: 4,
	}

	tests := []struct {
		name            string
		itemType        item.Type
		seed            []request.UploadItem
		param           request.UploadItem
		expectedErr     error
		expectedMessage string
	}{
		{
			name:            "given new book should upload",
			itemType:        item.TypeBook,
			param:           dune,
			expectedMessage: response.MessageUploadSuccessful,
		},
		{
			name:            "given duplicate title for the seller should conflict",
			itemType:        item.TypeBook,
			seed:            []request.UploadItem{dune},
			param:           dune,
			expectedErr:     inErrors.ErrConflict,
			expectedMessage: "This book already exists for the seller. Duplicate uploads are not allowed.",
		},
		{
			name:            "given same title as a home item should upload",
			itemType:        item.TypeHome,
			seed:            []request.UploadItem{dune},
			param:           request.UploadItem{Title: "Dune", Manufacturer: "Acme", Category: "Decor", TotalQuantity: 1},
			expectedMessage: response.MessageUploadSuccessful,
		},
		{
			name:        "given empty title should return invalid input",
			itemType:    item.TypeBook,
			param:       request.UploadItem{Title: "  ", TotalQuantity: 1},
			expectedErr: inErrors.ErrInvalidInput,
		},
		{
			name:        "given negative price should return invalid input",
			itemType:    item.TypeHome,
			param:       request.UploadItem{Title: "Lamp", Price: decimal.NewFromInt(-1)},
			expectedErr: inErrors.ErrInvalidInput,
		},
		{
			name:        "given negative quantity should return invalid input",
			itemType:    item.TypeHome,
			param:       request.UploadItem{Title: "Lamp", TotalQuantity: -2},
			expectedErr: inErrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			svc := NewInventoryService(repositorytest.NewStore())
			for _, seed := range tt.seed {
				_, err := svc.UploadBook(c, seller, seed)
				require.NoError(t, err)
			}

			actual, err := svc.Upload(c, tt.itemType, seller, tt.param)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.False(t, actual.Success)
				assert.Nil(t, actual.Item)
				if tt.expectedMessage != "" {
					assert.Equal(t, tt.expectedMessage, actual.Message)
				}
				return
			}

			require.NoError(t, err)
			assert.True(t, actual.Success)
			assert.Equal(t, tt.expectedMessage, actual.Message)
			require.NotNil(t, actual.Item)
			assert.Equal(t, tt.itemType, actual.Item.Type)
			assert.Equal(t, seller, actual.Item.SellerID)
			assert.Equal(t, tt.param.TotalQuantity, actual.Item.TotalQuantity)
			assert.NotEqual(t, uuid.Nil, actual.Item.ID)
		})
	}
}

func TestFindItems(t *testing.T) {
	c := context.Background()
	svc := NewInventoryService(repositorytest.NewStore())
	seller, other := uuid.New(), uuid.New()

	book, err := svc.UploadBook(c, seller, request.UploadItem{Title: "Dune", Author: "Frank Herbert", TotalQuantity: 1})
	require.NoError(t, err)
	_, err = svc.UploadHomeItem(c, seller, request.UploadItem{Title: "Lamp", Manufacturer: "Acme", Category: "Lighting"})
	require.NoError(t, err)
	_, err = svc.UploadBook(c, other, request.UploadItem{Title: "Emma"})
	require.NoError(t, err)

	books, err := svc.FindItems(c, item.TypeBook)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	found, err := svc.FindItemById(c, item.TypeBook, book.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", found.Author)
	assert.Equal(t, "Dune", found.Title)

	_, err = svc.FindItemById(c, item.TypeHome, book.Item.ID)
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	bySeller, err := svc.FindItemsBySellerId(c, seller)
	require.NoError(t, err)
	require.Len(t, bySeller, 2)
	assert.Equal(t, item.TypeBook, bySeller[0].Type)
	assert.Equal(t, item.TypeHome, bySeller[1].Type)
	assert.Equal(t, "Acme", bySeller[1].Manufacturer)

	none, err := svc.FindItemsBySellerId(c, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReviews(t *testing.T) {
	c := context.Background()
	svc := NewInventoryService(repositorytest.NewStore())
	uploaded, err := svc.UploadBook(c, uuid.New(), request.UploadItem{Title: "Dune"})
	require.NoError(t, err)
	id := uploaded.Item.ID

	actual, err := svc.AddReview(c, item.TypeBook, id, request.Review{Reviewer: "Alice", Comment: "great", Rating: 5})
	require.NoError(t, err)
	actual, err = svc.AddReview(c, item.TypeBook, id, request.Review{Reviewer: "bob", Comment: "meh", Rating: 2})
	require.NoError(t, err)
	require.Len(t, actual.Reviews, 2)
	assert.InDelta(t, 3.5, actual.Ratings, 0.0001)

	actual, err = svc.UpdateReview(c, item.TypeBook, id, "ALICE", request.Review{Comment: "good", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "good", actual.Reviews[0].Comment)
	assert.InDelta(t, 3.0, actual.Ratings, 0.0001)

	actual, err = svc.DeleteReview(c, item.TypeBook, id, "Bob")
	require.NoError(t, err)
	require.Len(t, actual.Reviews, 1)
	assert.InDelta(t, 4.0, actual.Ratings, 0.0001)

	_, err = svc.DeleteReview(c, item.TypeBook, id, "carol")
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	_, err = svc.AddReview(c, item.TypeBook, id, request.Review{Reviewer: "dave", Rating: 6})
	assert.ErrorIs(t, err, inErrors.ErrInvalidInput)

	_, err = svc.AddReview(c, item.TypeBook, uuid.New(), request.Review{Reviewer: "dave", Rating: 3})
	assert.ErrorIs(t, err, inErrors.ErrNotFound)

	found, err := svc.FindItemById(c, item.TypeBook, id)
	require.NoError(t, err)
	require.Len(t, found.Reviews, 1)
	assert.InDelta(t, 4.0, found.Ratings, 0.0001)
}
