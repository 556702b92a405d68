package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/marketplace/cart/internal/cache"
	"github.com/Alturino/marketplace/cart/internal/otel"
	"github.com/Alturino/marketplace/cart/pkg/request"
	"github.com/Alturino/marketplace/cart/pkg/response"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/metrics"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
)

// loadTimeout bounds a shared cart load, which outlives the request that started it.
const loadTimeout = 5 * time.Second

var (
	errCartNotFound  = fmt.Errorf("cart not found for the user with error=%w", inErrors.ErrNotFound)
	errItemNotInCart = fmt.Errorf("item not found in the cart with error=%w", inErrors.ErrNotFound)
)

type CartService struct {
	store repository.Store
	cache cache.CartCache
	sfg   singleflight.Group
}

func NewCartService(store repository.Store, cache cache.CartCache) *CartService {
	return &CartService{store: store, cache: cache}
}

func failed(span trace.Span, logger zerolog.Logger, message string, err error) (response.Message, error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	return response.Message{Success: false, Message: message}, err
}

// AddToCart takes one unit of the item out of stock and puts it in the user's cart.
func (s *CartService) AddToCart(
	c context.Context,
	userId uuid.UUID,
	param request.AddToCart,
) (response.Message, error) {
	c, span := otel.Tracer.Start(c, "CartService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddToCart").
		Str(log.KeyUserID, userId.String()).
		Object(log.KeyCartItem, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing item type").Logger()
	logger.Info().Msg("parsing item type")
	itemType, err := item.ParseType(param.Type)
	if err != nil {
		err = fmt.Errorf("failed parsing item type with error=%w", err)
		return failed(span, logger, fmt.Sprintf("Unsupported item type: %s", param.Type), err)
	}
	if param.ItemId == uuid.Nil {
		err = fmt.Errorf("failed validating itemId with error=%w", inErrors.ErrInvalidInput)
		return failed(span, logger, response.MessageInvalidCartItem, err)
	}
	logger.Info().Msg("parsed item type")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	var added repository.CartItem
	err = s.store.ExecTx(c, func(q repository.Querier) error {
		// cart row before item row, the same order RemoveFromCart locks them in
		if _, err := q.UpsertCart(c, userId); err != nil {
			return fmt.Errorf("failed upserting cart with error=%w", err)
		}

		found, err := q.FindItemById(c, itemType, param.ItemId)
		if err != nil {
			return fmt.Errorf("failed finding %s with error=%w", itemType, err)
		}

		listing := found.Details()
		if listing.TotalQuantity <= 0 {
			return fmt.Errorf("failed reserving %s with error=%w", itemType, inErrors.ErrOutOfStock)
		}

		remaining, err := q.DecrementItemQuantity(c, itemType, param.ItemId)
		if errors.Is(err, inErrors.ErrNotFound) {
			return fmt.Errorf("failed reserving %s with error=%w", itemType, inErrors.ErrOutOfStock)
		}
		if err != nil {
			return fmt.Errorf("failed decrementing %s quantity with error=%w", itemType, err)
		}
		logger.Debug().
			Int32(log.KeyRemainingQuantity, remaining.Details().TotalQuantity).
			Msg("decremented item quantity")

		added, err = q.UpsertCartItem(c, repository.UpsertCartItemParams{
			UserID:   userId,
			ItemID:   listing.ID,
			ItemType: itemType,
			Name:     listing.Title,
			Price:    listing.Price,
			ImageURL: listing.ImageURL,
			SellerID: listing.SellerID,
		})
		if err != nil {
			return fmt.Errorf("failed upserting cart item with error=%w", err)
		}
		return nil
	})
	switch {
	case errors.Is(err, inErrors.ErrNotFound):
		return failed(span, logger, fmt.Sprintf("%s not found.", itemType.Label()), err)
	case errors.Is(err, inErrors.ErrOutOfStock):
		metrics.OutOfStock.WithLabelValues(itemType.String()).Inc()
		return failed(span, logger, response.MessageItemNotAvailable, err)
	case err != nil:
		return failed(span, logger, response.MessageUnexpected, fmt.Errorf("failed adding item to cart with error=%w", err))
	}
	logger.Info().Int32(log.KeyCartItemsCount, added.Quantity).Msg("added item to cart")
	metrics.CartItemsAdded.WithLabelValues(itemType.String()).Inc()

	s.invalidate(c, logger, userId)

	return response.Message{
		Success: true,
		Message: fmt.Sprintf("%s added to the cart!", itemType.Label()),
	}, nil
}

// RemoveFromCart gives one unit back to stock, or drops the whole cart when no item is named.
func (s *CartService) RemoveFromCart(
	c context.Context,
	userId uuid.UUID,
	param request.RemoveFromCart,
) (response.Message, error) {
	if param.WholeCart() {
		return s.ClearCart(c, userId)
	}

	c, span := otel.Tracer.Start(c, "CartService RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveFromCart").
		Str(log.KeyUserID, userId.String()).
		Object(log.KeyCartItem, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing item type").Logger()
	logger.Info().Msg("parsing item type")
	if param.ItemId == uuid.Nil || param.Type == "" {
		err := fmt.Errorf("failed validating cart item with error=%w", inErrors.ErrInvalidInput)
		return failed(span, logger, response.MessageInvalidCartItem, err)
	}
	itemType, err := item.ParseType(param.Type)
	if err != nil {
		err = fmt.Errorf("failed parsing item type with error=%w", err)
		return failed(span, logger, fmt.Sprintf("Unsupported item type: %s", param.Type), err)
	}
	logger.Info().Msg("parsed item type")

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	message := response.MessageItemQuantityReduced
	err = s.store.ExecTx(c, func(q repository.Querier) error {
		if _, err := q.LockCartByUserId(c, userId); err != nil {
			if errors.Is(err, inErrors.ErrNotFound) {
				return errCartNotFound
			}
			return fmt.Errorf("failed locking cart with error=%w", err)
		}

		items, err := q.FindCartItemsByUserId(c, userId)
		if err != nil {
			return fmt.Errorf("failed finding cart items with error=%w", err)
		}

		key := repository.CartItemKey{UserID: userId, ItemID: param.ItemId, ItemType: itemType}
		idx := -1
		for i, it := range items {
			if it.ItemID == key.ItemID && it.ItemType == key.ItemType {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errItemNotInCart
		}

		if line := items[idx]; line.Quantity > 1 {
			_, err = q.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
				CartItemKey: key,
				Quantity:    line.Quantity - 1,
			})
			if err != nil {
				return fmt.Errorf("failed decrementing cart item quantity with error=%w", err)
			}
		} else {
			if _, err = q.DeleteCartItem(c, key); err != nil {
				return fmt.Errorf("failed deleting cart item with error=%w", err)
			}
			if len(items) == 1 {
				if _, err = q.DeleteCartByUserId(c, userId); err != nil {
					return fmt.Errorf("failed deleting empty cart with error=%w", err)
				}
				message = response.MessageCartDeletedAsEmpty
			}
		}

		_, err = q.IncrementItemQuantity(c, itemType, param.ItemId)
		if errors.Is(err, inErrors.ErrNotFound) {
			logger.Warn().Msg("item no longer exists in inventory, skipping restock")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed restocking %s with error=%w", itemType, err)
		}
		return nil
	})
	switch {
	case errors.Is(err, errCartNotFound):
		return failed(span, logger, response.MessageCartNotFound, err)
	case errors.Is(err, errItemNotInCart):
		return failed(span, logger, response.MessageItemNotInCart, err)
	case err != nil:
		return failed(span, logger, response.MessageUnexpected, fmt.Errorf("failed removing item from cart with error=%w", err))
	}
	logger.Info().Msg("removed item from cart")
	metrics.CartItemsRemoved.WithLabelValues(itemType.String()).Inc()

	s.invalidate(c, logger, userId)

	return response.Message{Success: true, Message: message}, nil
}

// ClearCart deletes the user's cart without returning its items to stock.
func (s *CartService) ClearCart(c context.Context, userId uuid.UUID) (response.Message, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "deleting cart").
		Logger()

	logger.Info().Msg("deleting cart")
	err := s.store.ExecTx(c, func(q repository.Querier) error {
		if _, err := q.LockCartByUserId(c, userId); err != nil {
			if errors.Is(err, inErrors.ErrNotFound) {
				return errCartNotFound
			}
			return fmt.Errorf("failed locking cart with error=%w", err)
		}
		if _, err := q.DeleteCartByUserId(c, userId); err != nil {
			return fmt.Errorf("failed deleting cart with error=%w", err)
		}
		return nil
	})
	switch {
	case errors.Is(err, errCartNotFound):
		return failed(span, logger, response.MessageCartNotFound, err)
	case err != nil:
		return failed(span, logger, response.MessageUnexpected, fmt.Errorf("failed deleting cart with error=%w", err))
	}
	logger.Info().Msg("deleted cart")

	s.invalidate(c, logger, userId)

	return response.Message{Success: true, Message: response.MessageCartDeleted}, nil
}

// GetAllCartItemsForUser returns an empty slice when the user has no cart.
func (s *CartService) GetAllCartItemsForUser(
	c context.Context,
	userId uuid.UUID,
) ([]response.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService GetAllCartItemsForUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetAllCartItemsForUser").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCacheKey, cache.CacheKey(userId)).
		Logger()

	v, err, shared := s.sfg.Do(userId.String(), func() (interface{}, error) {
		lc, cancel := context.WithTimeout(context.WithoutCancel(c), loadTimeout)
		defer cancel()

		lg := logger.With().Str(log.KeyProcess, "finding cart items in cache").Logger()
		lg.Info().Msg("finding cart items in cache")
		items, err := s.cache.Get(lc, userId)
		if err == nil {
			lg.Info().Msg("found cart items in cache")
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			lg.Warn().Err(err).Msg(err.Error())
		}

		fill := true
		version, err := s.cache.Version(lc, userId)
		if err != nil {
			lg.Warn().Err(err).Msg(err.Error())
			fill = false
		}

		lg = lg.With().Str(log.KeyProcess, "finding cart items in db").Logger()
		lg.Info().Msg("finding cart items in db")
		items, err = s.store.FindCartItemsByUserId(lc, userId)
		if err != nil {
			return nil, fmt.Errorf("failed finding cart items in db with error=%w", err)
		}
		lg.Info().Msg("found cart items in db")
		if !fill {
			return items, nil
		}

		lg = lg.With().Str(log.KeyProcess, "inserting cart items to cache").Logger()
		err = s.cache.Fill(lc, userId, version, items)
		switch {
		case errors.Is(err, cache.ErrStaleFill):
			lg.Info().Msg("cart changed while loading, skipped inserting cart items to cache")
		case err != nil:
			lg.Warn().Err(err).Msg(err.Error())
		default:
			lg.Info().Msg("inserted cart items to cache")
		}
		return items, nil
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	items := v.([]repository.CartItem)
	logger.Info().Bool("shared", shared).Int(log.KeyCartItemsCount, len(items)).Msg("found cart items")

	return response.FromCartItems(items), nil
}

func (s *CartService) invalidate(c context.Context, logger zerolog.Logger, userId uuid.UUID) {
	logger = logger.With().
		Str(log.KeyProcess, "invalidating cart cache").
		Str(log.KeyCacheKey, cache.CacheKey(userId)).
		Logger()
	if err := s.cache.Delete(c, userId); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Debug().Msg("invalidated cart cache")
}
