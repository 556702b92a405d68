package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cartResponse "github.com/Alturino/marketplace/cart/pkg/response"
	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/metrics"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/order/internal/otel"
	"github.com/Alturino/marketplace/order/pkg/request"
	"github.com/Alturino/marketplace/order/pkg/response"
)

// CartClearer empties a user's cart once the order is stored.
type CartClearer interface {
	ClearCart(c context.Context, userId uuid.UUID) (cartResponse.Message, error)
}

type OrderService struct {
	store repository.Store
	cart  CartClearer
	now   func() time.Time
}

func NewOrderService(store repository.Store, cart CartClearer) *OrderService {
	return &OrderService{store: store, cart: cart, now: time.Now}
}

func failedOrder(span trace.Span, logger zerolog.Logger, err error) (response.OrderResult, error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	return response.OrderResult{
		Success: false,
		Message: fmt.Sprintf(response.MessageOrderFailedFmt, err.Error()),
	}, err
}

type parsedLine struct {
	request.OrderLine
	itemType item.Type
}

func parseLines(lines []request.OrderLine) ([]parsedLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("order has no items with error=%w", inErrors.ErrInvalidInput)
	}
	parsed := make([]parsedLine, 0, len(lines))
	for i, l := range lines {
		t, err := item.ParseType(l.Type)
		if err != nil {
			return nil, fmt.Errorf("failed parsing type of line=%d with error=%w", i, err)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf(
				"quantity=%d of line=%d must be positive with error=%w",
				l.Quantity,
				i,
				inErrors.ErrInvalidInput,
			)
		}
		if l.ItemId == uuid.Nil {
			return nil, fmt.Errorf("itemId of line=%d is required with error=%w", i, inErrors.ErrInvalidInput)
		}
		parsed = append(parsed, parsedLine{OrderLine: l, itemType: t})
	}
	return parsed, nil
}

func maskPayment(p request.Payment) (repository.Payment, error) {
	if len(p.CardNumber) < 4 {
		return repository.Payment{}, fmt.Errorf("card number is too short with error=%w", inErrors.ErrInvalidInput)
	}
	return repository.Payment{CardLast4: p.CardNumber[len(p.CardNumber)-4:], Expiry: p.Expiry}, nil
}

func toAddress(a request.Address) repository.Address {
	return repository.Address{
		Type:    a.Type,
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}

// CreateOrder stores the order with every line stamped with its current seller
// and then clears the user's cart. Lines whose item no longer exists are dropped.
func (s *OrderService) CreateOrder(
	c context.Context,
	userId uuid.UUID,
	param request.CreateOrder,
) (response.OrderResult, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Str(log.KeyUserID, userId.String()).
		Object(log.KeyOrder, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating order").Logger()
	logger.Info().Msg("validating order")
	lines, err := parseLines(param.Items)
	if err != nil {
		return failedOrder(span, logger, fmt.Errorf("failed validating order with error=%w", err))
	}
	payment, err := maskPayment(param.Payment)
	if err != nil {
		return failedOrder(span, logger, fmt.Errorf("failed validating payment with error=%w", err))
	}
	logger.Info().Msg("validated order")

	logger = logger.With().Str(log.KeyProcess, "resolving sellers").Logger()
	logger.Info().Msg("resolving sellers")
	resolved := make([]repository.OrderLine, 0, len(lines))
	for _, l := range lines {
		lg := logger.With().
			Str(log.KeyItemID, l.ItemId.String()).
			Str(log.KeyItemType, l.itemType.String()).
			Logger()

		found, err := s.store.FindItemById(c, l.itemType, l.ItemId)
		if errors.Is(err, inErrors.ErrNotFound) {
			lg.Warn().Msg("item no longer exists, dropping line")
			span.AddEvent("dropped order line", trace.WithAttributes(
				attribute.String(log.KeyItemID, l.ItemId.String()),
				attribute.String(log.KeyItemType, l.itemType.String()),
			))
			metrics.OrderLinesDropped.Inc()
			continue
		}
		if err != nil {
			err = fmt.Errorf("failed resolving seller of itemId=%s with error=%w", l.ItemId, err)
			return failedOrder(span, logger, err)
		}

		resolved = append(resolved, repository.OrderLine{
			ItemID:   l.ItemId,
			Type:     l.itemType,
			Name:     l.Name,
			Price:    l.Price,
			ImageURL: l.ImageURL,
			SellerID: found.Details().SellerID,
			Quantity: l.Quantity,
		})
	}
	if len(resolved) == 0 {
		err = fmt.Errorf("none of the ordered items are available with error=%w", inErrors.ErrInvalidInput)
		return failedOrder(span, logger, err)
	}
	logger.Info().Int("linesCount", len(resolved)).Msg("resolved sellers")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	order, err := s.store.InsertOrder(c, repository.Order{
		ID:              uuid.New(),
		UserID:          userId,
		Items:           resolved,
		TotalPrice:      param.TotalPrice,
		BillingAddress:  toAddress(param.BillingAddress),
		ShippingAddress: toAddress(param.ShippingAddress),
		Payment:         payment,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", errors.Join(inErrors.ErrUnexpected, err))
		return failedOrder(span, logger, err)
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order")
	metrics.OrdersCreated.Inc()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if _, err := s.cart.ClearCart(c, userId); err != nil {
		logger.Warn().Err(err).Msg("failed clearing cart after order")
	} else {
		logger.Info().Msg("cleared cart")
	}

	resp := response.FromOrder(order)
	return response.OrderResult{
		Success: true,
		Message: response.MessageOrderCreated,
		Order:   &resp,
	}, nil
}

// GetOrdersByUserId returns the user's orders newest first, or nil when there are none.
func (s *OrderService) GetOrdersByUserId(c context.Context, userId uuid.UUID) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService GetOrdersByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService GetOrdersByUserId").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProcess, "finding orders by userId").
		Logger()

	logger.Info().Msg("finding orders by userId")
	orders, err := s.store.FindOrdersByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders by userId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrdersCount, len(orders)).Msg("found orders by userId")

	if len(orders) == 0 {
		return nil, nil
	}
	return response.FromOrders(orders), nil
}

// GetSoldItemsBySellerId flattens every order line sold by the seller.
func (s *OrderService) GetSoldItemsBySellerId(
	c context.Context,
	sellerId uuid.UUID,
) ([]response.SoldItem, error) {
	c, span := otel.Tracer.Start(c, "OrderService GetSoldItemsBySellerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService GetSoldItemsBySellerId").
		Str(log.KeySellerID, sellerId.String()).
		Str(log.KeyProcess, "finding orders").
		Logger()

	logger.Info().Msg("finding orders")
	orders, err := s.store.FindOrders(c)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrdersCount, len(orders)).Msg("found orders")

	sold := []response.SoldItem{}
	for _, o := range orders {
		for _, l := range o.Items {
			if l.SellerID == sellerId {
				sold = append(sold, response.FromSoldLine(o, l))
			}
		}
	}
	logger.Info().Int(log.KeyItems, len(sold)).Msg("collected sold items")

	return sold, nil
}
