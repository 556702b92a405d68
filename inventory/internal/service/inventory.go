package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/inventory/internal/otel"
	"github.com/Alturino/marketplace/inventory/pkg/request"
	"github.com/Alturino/marketplace/inventory/pkg/response"
)

type InventoryService struct {
	store repository.Store
	now   func() time.Time
}

func NewInventoryService(store repository.Store) *InventoryService {
	return &InventoryService{store: store, now: time.Now}
}

func validateUpload(param request.UploadItem) error {
	if strings.TrimSpace(param.Title) == "" {
		return fmt.Errorf("title is required with error=%w", inErrors.ErrInvalidInput)
	}
	if param.Price.IsNegative() {
		return fmt.Errorf("price=%s must not be negative with error=%w", param.Price, inErrors.ErrInvalidInput)
	}
	if param.TotalQuantity < 0 {
		return fmt.Errorf(
			"totalQuantity=%d must not be negative with error=%w",
			param.TotalQuantity,
			inErrors.ErrInvalidInput,
		)
	}
	return nil
}

func newItem(t item.Type, sellerId uuid.UUID, param request.UploadItem) item.Item {
	listing := item.Listing{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(param.Title),
		Description:   param.Description,
		Price:         param.Price,
		ImageURL:      param.ImageURL,
		SellerID:      sellerId,
		TotalQuantity: param.TotalQuantity,
		Reviews:       []item.Review{},
	}
	if t == item.TypeBook {
		return item.Book{Listing: listing, Author: param.Author}
	}
	return item.HomeItem{Listing: listing, Manufacturer: param.Manufacturer, Category: param.Category}
}

func (s *InventoryService) UploadBook(
	c context.Context,
	sellerId uuid.UUID,
	param request.UploadItem,
) (response.Upload, error) {
	return s.Upload(c, item.TypeBook, sellerId, param)
}

func (s *InventoryService) UploadHomeItem(
	c context.Context,
	sellerId uuid.UUID,
	param request.UploadItem,
) (response.Upload, error) {
	return s.Upload(c, item.TypeHome, sellerId, param)
}

// Upload lists a new item for sale. A seller cannot list two items of one type under the same title.
func (s *InventoryService) Upload(
	c context.Context,
	t item.Type,
	sellerId uuid.UUID,
	param request.UploadItem,
) (response.Upload, error) {
	c, span := otel.Tracer.Start(c, "InventoryService Upload")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryService Upload").
		Str(log.KeyItemType, t.String()).
		Str(log.KeySellerID, sellerId.String()).
		Object(log.KeyItem, param).
		Logger()

	failed := func(message string, err error) (response.Upload, error) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Upload{Success: false, Message: message}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating item").Logger()
	logger.Info().Msg("validating item")
	if err := validateUpload(param); err != nil {
		return failed(err.Error(), fmt.Errorf("failed validating item with error=%w", err))
	}
	logger.Info().Msg("validated item")

	logger = logger.With().Str(log.KeyProcess, "inserting item").Logger()
	logger.Info().Msg("inserting item")
	var inserted item.Item
	err := s.store.ExecTx(c, func(q repository.Querier) error {
		_, err := q.FindItemByTitleAndSellerId(c, t, strings.TrimSpace(param.Title), sellerId)
		if err == nil {
			return fmt.Errorf("item with title=%s already exists with error=%w", param.Title, inErrors.ErrConflict)
		}
		if !errors.Is(err, inErrors.ErrNotFound) {
			return fmt.Errorf("failed finding item by title with error=%w", err)
		}

		inserted, err = q.InsertItem(c, newItem(t, sellerId, param))
		if err != nil {
			return fmt.Errorf("failed inserting item with error=%w", err)
		}
		return nil
	})
	if errors.Is(err, inErrors.ErrConflict) {
		return failed(fmt.Sprintf(response.MessageDuplicateUpload, strings.ToLower(t.Label())), err)
	}
	if err != nil {
		return failed(err.Error(), fmt.Errorf("failed uploading item with error=%w", err))
	}
	logger.Info().Str(log.KeyItemID, inserted.Details().ID.String()).Msg("inserted item")

	resp := response.FromItem(inserted)
	return response.Upload{Success: true, Message: response.MessageUploadSuccessful, Item: &resp}, nil
}

func (s *InventoryService) FindItems(c context.Context, t item.Type) ([]response.Item, error) {
	c, span := otel.Tracer.Start(c, "InventoryService FindItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryService FindItems").
		Str(log.KeyItemType, t.String()).
		Str(log.KeyProcess, "finding items").
		Logger()

	logger.Info().Msg("finding items")
	items, err := s.store.FindItems(c, t)
	if err != nil {
		err = fmt.Errorf("failed finding items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyItems, len(items)).Msg("found items")

	return response.FromItems(items), nil
}

func (s *InventoryService) FindItemById(c context.Context, t item.Type, id uuid.UUID) (response.Item, error) {
	c, span := otel.Tracer.Start(c, "InventoryService FindItemById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryService FindItemById").
		Str(log.KeyItemType, t.String()).
		Str(log.KeyItemID, id.String()).
		Str(log.KeyProcess, "finding item by id").
		Logger()

	logger.Info().Msg("finding item by id")
	found, err := s.store.FindItemById(c, t, id)
	if err != nil {
		err = fmt.Errorf("failed finding %s by id with error=%w", t, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Item{}, err
	}
	logger.Info().Msg("found item by id")

	return response.FromItem(found), nil
}

// FindItemsBySellerId lists the seller's books followed by the seller's home items.
func (s *InventoryService) FindItemsBySellerId(c context.Context, sellerId uuid.UUID) ([]response.Item, error) {
	c, span := otel.Tracer.Start(c, "InventoryService FindItemsBySellerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "InventoryService FindItemsBySellerId").
		Str(log.KeySellerID, sellerId.String()).
		Logger()

	items := []response.Item{}
	for _, t := range item.Types {
		lg := logger.With().
			Str(log.KeyItemType, t.String()).
			Str(log.KeyProcess, "finding items by sellerId").
			Logger()

		lg.Info().Msg("finding items by sellerId")
		found, err := s.store.FindItemsBySellerId(c, t, sellerId)
		if err != nil {
			err = fmt.Errorf("failed finding %s items by sellerId with error=%w", t, err)
			inOtel.RecordError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		lg.Info().Int(log.KeyItems, len(found)).Msg("found items by sellerId")
		items = append(items, response.FromItems(found)...)
	}

	return items, nil
}

// mutateReviews applies fn to the item's reviews under a row lock and stores the new average rating.
func (s *InventoryService) mutateReviews(
	c context.Context,
	tag string,
	t item.Type,
	id uuid.UUID,
	fn func([]item.Review) ([]item.Review, error),
) (response.Item, error) {
	c, span := otel.Tracer.Start(c, tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeyItemType, t.String()).
		Str(log.KeyItemID, id.String()).
		Str(log.KeyProcess, "updating reviews").
		Logger()

	logger.Info().Msg("updating reviews")
	var updated item.Item
	err := s.store.ExecTx(c, func(q repository.Querier) error {
		locked, err := q.LockItemById(c, t, id)
		if err != nil {
			return fmt.Errorf("failed locking %s with error=%w", t, err)
		}

		reviews, err := fn(locked.Details().Reviews)
		if err != nil {
			return err
		}

		updated, err = q.UpdateItemReviews(c, repository.UpdateItemReviewsParams{
			ID:      id,
			Type:    t,
			Reviews: reviews,
			Ratings: item.AverageRating(reviews),
		})
		if err != nil {
			return fmt.Errorf("failed updating reviews with error=%w", err)
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("failed updating reviews with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Item{}, err
	}
	logger.Info().Float64("ratings", updated.Details().Ratings).Msg("updated reviews")

	return response.FromItem(updated), nil
}

func validateReview(r request.Review) error {
	if strings.TrimSpace(r.Reviewer) == "" {
		return fmt.Errorf("reviewer is required with error=%w", inErrors.ErrInvalidInput)
	}
	if r.Rating < 0 || r.Rating > 5 {
		return fmt.Errorf("rating=%v must be between 0 and 5 with error=%w", r.Rating, inErrors.ErrInvalidInput)
	}
	return nil
}

func (s *InventoryService) AddReview(
	c context.Context,
	t item.Type,
	id uuid.UUID,
	param request.Review,
) (response.Item, error) {
	if err := validateReview(param); err != nil {
		return response.Item{}, err
	}
	review := item.Review{
		Reviewer:  strings.TrimSpace(param.Reviewer),
		Comment:   param.Comment,
		Rating:    param.Rating,
		CreatedAt: s.now().UTC(),
	}
	return s.mutateReviews(c, "InventoryService AddReview", t, id, func(reviews []item.Review) ([]item.Review, error) {
		return item.AddReview(reviews, review), nil
	})
}

// UpdateReview rewrites the review of reviewer, matched case-insensitively.
func (s *InventoryService) UpdateReview(
	c context.Context,
	t item.Type,
	id uuid.UUID,
	reviewer string,
	param request.Review,
) (response.Item, error) {
	param.Reviewer = reviewer
	if err := validateReview(param); err != nil {
		return response.Item{}, err
	}
	review := item.Review{Reviewer: reviewer, Comment: param.Comment, Rating: param.Rating}
	return s.mutateReviews(c, "InventoryService UpdateReview", t, id, func(reviews []item.Review) ([]item.Review, error) {
		return item.UpdateReview(reviews, review)
	})
}

func (s *InventoryService) DeleteReview(
	c context.Context,
	t item.Type,
	id uuid.UUID,
	reviewer string,
) (response.Item, error) {
	return s.mutateReviews(c, "InventoryService DeleteReview", t, id, func(reviews []item.Review) ([]item.Review, error) {
		return item.DeleteReview(reviews, reviewer)
	})
}
