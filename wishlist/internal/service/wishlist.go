package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/wishlist/internal/otel"
	"github.com/Alturino/marketplace/wishlist/pkg/request"
	"github.com/Alturino/marketplace/wishlist/pkg/response"
)

type WishlistService struct {
	store repository.Store
}

func NewWishlistService(store repository.Store) *WishlistService {
	return &WishlistService{store: store}
}

// AddWishlistItem saves the item for later with its name and image taken from the current listing.
func (s *WishlistService) AddWishlistItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddWishlistItem,
) (response.Message, error) {
	c, span := otel.Tracer.Start(c, "WishlistService AddWishlistItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService AddWishlistItem").
		Str(log.KeyUserID, userId.String()).
		Object(log.KeyItem, param).
		Logger()

	failed := func(message string, err error) (response.Message, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Message{Success: false, Message: message}, err
	}

	logger = logger.With().Str(log.KeyProcess, "parsing item type").Logger()
	logger.Info().Msg("parsing item type")
	itemType, err := item.ParseType(param.Type)
	if err != nil {
		err = fmt.Errorf("failed parsing item type with error=%w", err)
		return failed(fmt.Sprintf("Unsupported item type: %s", param.Type), err)
	}
	logger.Info().Msg("parsed item type")

	logger = logger.With().Str(log.KeyProcess, "finding item").Logger()
	logger.Info().Msg("finding item")
	found, err := s.store.FindItemById(c, itemType, param.ItemId)
	if errors.Is(err, inErrors.ErrNotFound) {
		return failed(fmt.Sprintf("%s not found.", itemType.Label()), fmt.Errorf("failed finding item with error=%w", err))
	}
	if err != nil {
		return failed(err.Error(), fmt.Errorf("failed finding item with error=%w", err))
	}
	logger.Info().Msg("found item")

	logger = logger.With().Str(log.KeyProcess, "inserting wishlist item").Logger()
	logger.Info().Msg("inserting wishlist item")
	listing := found.Details()
	inserted, err := s.store.InsertWishlistItem(c, repository.WishlistItem{
		ID:       uuid.New(),
		UserID:   userId,
		ItemID:   listing.ID,
		ItemType: itemType,
		Name:     listing.Title,
		ImageURL: listing.ImageURL,
	})
	if errors.Is(err, inErrors.ErrConflict) {
		return failed(response.MessageAlreadyInList, fmt.Errorf("failed inserting wishlist item with error=%w", err))
	}
	if err != nil {
		return failed(err.Error(), fmt.Errorf("failed inserting wishlist item with error=%w", err))
	}
	logger.Info().Str(log.KeyWishlistItemID, inserted.ID.String()).Msg("inserted wishlist item")

	resp := response.FromWishlistItem(inserted)
	return response.Message{Success: true, Message: response.MessageItemAdded, Item: &resp}, nil
}

func (s *WishlistService) GetWishlistItemsByUserId(c context.Context, userId uuid.UUID) ([]response.WishlistItem, error) {
	c, span := otel.Tracer.Start(c, "WishlistService GetWishlistItemsByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService GetWishlistItemsByUserId").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "finding wishlist items").
		Logger()

	logger.Info().Msg("finding wishlist items")
	items, err := s.store.FindWishlistItemsByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding wishlist items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyWishlistItemsCount, len(items)).Msg("found wishlist items")

	return response.FromWishlistItems(items), nil
}

// GetWishlistItemById only finds items owned by userId.
func (s *WishlistService) GetWishlistItemById(
	c context.Context,
	userId uuid.UUID,
	id uuid.UUID,
) (response.WishlistItem, error) {
	c, span := otel.Tracer.Start(c, "WishlistService GetWishlistItemById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService GetWishlistItemById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyWishlistItemID, id.String()).
		Str(log.KeyProcess, "finding wishlist item").
		Logger()

	logger.Info().Msg("finding wishlist item")
	found, err := s.store.FindWishlistItemById(c, userId, id)
	if err != nil {
		err = fmt.Errorf("failed finding wishlist item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.WishlistItem{}, err
	}
	logger.Info().Msg("found wishlist item")

	return response.FromWishlistItem(found), nil
}

func (s *WishlistService) RemoveWishlistItem(c context.Context, userId uuid.UUID, id uuid.UUID) (response.Message, error) {
	c, span := otel.Tracer.Start(c, "WishlistService RemoveWishlistItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService RemoveWishlistItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyWishlistItemID, id.String()).
		Str(log.KeyProcess, "deleting wishlist item").
		Logger()

	logger.Info().Msg("deleting wishlist item")
	deleted, err := s.store.DeleteWishlistItem(c, userId, id)
	if err == nil && deleted == 0 {
		err = fmt.Errorf("wishlist item id=%s with error=%w", id, inErrors.ErrNotFound)
	}
	if err != nil {
		err = fmt.Errorf("failed deleting wishlist item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		message := response.MessageWishlistMissing
		if !errors.Is(err, inErrors.ErrNotFound) {
			message = err.Error()
		}
		return response.Message{Success: false, Message: message}, err
	}
	logger.Info().Msg("deleted wishlist item")

	return response.Message{Success: true, Message: response.MessageItemRemoved}, nil
}
