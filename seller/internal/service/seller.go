package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/log"
	"github.com/Alturino/marketplace/internal/metrics"
	inOtel "github.com/Alturino/marketplace/internal/otel"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/seller/internal/otel"
	"github.com/Alturino/marketplace/seller/pkg/request"
	"github.com/Alturino/marketplace/seller/pkg/response"
)

// SellerService recomputes every aggregate from the full order history on each call.
type SellerService struct {
	store    repository.Store
	location *time.Location
	now      func() time.Time
}

func NewSellerService(store repository.Store, location *time.Location) *SellerService {
	if location == nil {
		location = time.UTC
	}
	return &SellerService{store: store, location: location, now: time.Now}
}

// orders loads every order and keeps those inside the requested time frame.
func (s *SellerService) orders(
	c context.Context,
	logger zerolog.Logger,
	timeFrame string,
) ([]repository.Order, error) {
	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	orders, err := s.store.FindOrders(c)
	if err != nil {
		return nil, fmt.Errorf("failed finding orders with error=%w", err)
	}
	logger.Info().Int(log.KeyOrdersCount, len(orders)).Msg("found orders")

	logger = logger.With().Str(log.KeyProcess, "filtering orders by time frame").Logger()
	from, ok := cutoff(s.now(), s.location, timeFrame)
	if ok {
		logger = logger.With().Time(log.KeyCutoff, from).Logger()
	}
	filtered := filterOrders(orders, from, ok)
	logger.Info().Int(log.KeyOrdersCount, len(filtered)).Msg("filtered orders by time frame")

	return filtered, nil
}

func (s *SellerService) GetSellerSalesAnalytics(
	c context.Context,
	param request.Analytics,
) (response.SalesAnalytics, error) {
	c, span := otel.Tracer.Start(c, "SellerService GetSellerSalesAnalytics")
	defer span.End()
	timer := prometheus.NewTimer(metrics.AnalyticsDuration.WithLabelValues("sales"))
	defer timer.ObserveDuration()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SellerService GetSellerSalesAnalytics").
		Object(log.KeyAnalytics, param).
		Logger()

	orders, err := s.orders(c, logger, param.TimeFrame)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SalesAnalytics{}, err
	}

	t := foldTotals(orders, param.SellerId)
	average := decimal.Zero
	if t.purchases > 0 {
		average = t.revenue.Div(decimal.NewFromInt(t.purchases))
	}
	logger.Info().Int64("totalPurchases", t.purchases).Msg("computed sales analytics")

	return response.SalesAnalytics{
		TotalBuyers:       len(t.buyers),
		TotalPurchases:    t.purchases,
		TotalRevenue:      t.revenue,
		AverageOrderValue: average,
	}, nil
}

// GetTopSellingProducts ranks the seller's products by revenue or quantity.
// Ties keep the order in which products were first seen.
func (s *SellerService) GetTopSellingProducts(
	c context.Context,
	param request.Analytics,
) ([]response.TopProduct, error) {
	c, span := otel.Tracer.Start(c, "SellerService GetTopSellingProducts")
	defer span.End()
	timer := prometheus.NewTimer(metrics.AnalyticsDuration.WithLabelValues("top_products"))
	defer timer.ObserveDuration()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SellerService GetTopSellingProducts").
		Object(log.KeyAnalytics, param).
		Logger()

	orders, err := s.orders(c, logger, param.TimeFrame)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	products := []response.TopProduct{}
	index := map[uuid.UUID]int{}
	for _, o := range orders {
		for _, l := range sellerLines(o, param.SellerId) {
			i, ok := index[l.ItemID]
			if !ok {
				i = len(products)
				index[l.ItemID] = i
				products = append(products, response.TopProduct{
					ID:       l.ItemID,
					Name:     l.Name,
					Type:     l.Type,
					ImageURL: l.ImageURL,
					Revenue:  decimal.Zero,
				})
			}
			products[i].Quantity += int64(l.Quantity)
			products[i].Revenue = products[i].Revenue.Add(l.Revenue())
		}
	}

	if strings.EqualFold(param.Metric, MetricRevenue) {
		slices.SortStableFunc(products, func(a, b response.TopProduct) int {
			return b.Revenue.Cmp(a.Revenue)
		})
	} else {
		slices.SortStableFunc(products, func(a, b response.TopProduct) int {
			return cmp.Compare(b.Quantity, a.Quantity)
		})
	}

	limit := param.Limit
	if limit <= 0 {
		limit = defaultTopProductsLimit
	}
	if len(products) > limit {
		products = products[:limit]
	}
	logger.Info().Int(log.KeyLimit, limit).Int(log.KeyItems, len(products)).Msg("ranked products")

	return products, nil
}

// GetSalesByCategory folds the seller's lines into the books and home buckets.
func (s *SellerService) GetSalesByCategory(
	c context.Context,
	param request.Analytics,
) (response.SalesByCategory, error) {
	c, span := otel.Tracer.Start(c, "SellerService GetSalesByCategory")
	defer span.End()
	timer := prometheus.NewTimer(metrics.AnalyticsDuration.WithLabelValues("sales_by_category"))
	defer timer.ObserveDuration()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SellerService GetSalesByCategory").
		Object(log.KeyAnalytics, param).
		Logger()

	orders, err := s.orders(c, logger, param.TimeFrame)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SalesByCategory{}, err
	}

	categories := map[string]response.CategorySales{
		CategoryBooks: {Name: CategoryBooks, Revenue: decimal.Zero},
		CategoryHome:  {Name: CategoryHome, Revenue: decimal.Zero},
	}
	bucketOf := map[item.Type]string{item.TypeBook: CategoryBooks, item.TypeHome: CategoryHome}
	for _, o := range orders {
		for _, l := range sellerLines(o, param.SellerId) {
			name, ok := bucketOf[l.Type]
			if !ok {
				continue
			}
			bucket := categories[name]
			bucket.Count += int64(l.Quantity)
			bucket.Revenue = bucket.Revenue.Add(l.Revenue())
			categories[name] = bucket
		}
	}
	logger.Info().Msg("computed sales by category")

	return response.SalesByCategory{Categories: categories}, nil
}

// GetRevenueOverTime sums the seller's revenue per day, ISO week or month.
// Orders without a timestamp are reported under the last, unknown bucket.
func (s *SellerService) GetRevenueOverTime(
	c context.Context,
	param request.Analytics,
) (response.RevenueOverTime, error) {
	c, span := otel.Tracer.Start(c, "SellerService GetRevenueOverTime")
	defer span.End()
	timer := prometheus.NewTimer(metrics.AnalyticsDuration.WithLabelValues("revenue_over_time"))
	defer timer.ObserveDuration()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SellerService GetRevenueOverTime").
		Object(log.KeyAnalytics, param).
		Logger()

	orders, err := s.orders(c, logger, param.TimeFrame)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.RevenueOverTime{}, err
	}

	buckets := []timeBucket{}
	index := map[string]int{}
	for _, o := range orders {
		revenue := decimal.Zero
		for _, l := range sellerLines(o, param.SellerId) {
			revenue = revenue.Add(l.Revenue())
		}
		if !revenue.IsPositive() {
			continue
		}

		label, start := timeKey(o.CreatedAt, s.location, param.GroupBy)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, timeBucket{label: label, start: start, revenue: decimal.Zero})
		}
		buckets[i].revenue = buckets[i].revenue.Add(revenue)
	}

	slices.SortStableFunc(buckets, func(a, b timeBucket) int {
		switch {
		case a.label == UnknownTimeKey && b.label == UnknownTimeKey:
			return 0
		case a.label == UnknownTimeKey:
			return 1
		case b.label == UnknownTimeKey:
			return -1
		default:
			return a.start.Compare(b.start)
		}
	})

	result := response.RevenueOverTime{
		TimeLabels:    make([]string, len(buckets)),
		RevenueValues: make([]decimal.Decimal, len(buckets)),
	}
	for i, b := range buckets {
		result.TimeLabels[i] = b.label
		result.RevenueValues[i] = b.revenue
	}
	logger.Info().Str(log.KeyGroupBy, param.GroupBy).Int("bucketsCount", len(buckets)).Msg("computed revenue over time")

	return result, nil
}

// GetSellerStatistics reports all-time totals and the distinct books the seller has sold.
func (s *SellerService) GetSellerStatistics(
	c context.Context,
	sellerId uuid.UUID,
) (response.SellerStatistics, error) {
	c, span := otel.Tracer.Start(c, "SellerService GetSellerStatistics")
	defer span.End()
	timer := prometheus.NewTimer(metrics.AnalyticsDuration.WithLabelValues("statistics"))
	defer timer.ObserveDuration()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SellerService GetSellerStatistics").
		Str(log.KeySellerID, sellerId.String()).
		Logger()

	orders, err := s.orders(c, logger, "")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.SellerStatistics{}, err
	}
	t := foldTotals(orders, sellerId)

	logger = logger.With().Str(log.KeyProcess, "finding purchased books").Logger()
	logger.Info().Msg("finding purchased books")
	books := []item.Book{}
	seen := map[uuid.UUID]struct{}{}
	for _, o := range orders {
		for _, l := range sellerLines(o, sellerId) {
			if l.Type != item.TypeBook {
				continue
			}
			if _, ok := seen[l.ItemID]; ok {
				continue
			}
			seen[l.ItemID] = struct{}{}

			found, err := s.store.FindItemById(c, item.TypeBook, l.ItemID)
			if errors.Is(err, inErrors.ErrNotFound) {
				logger.Debug().Str(log.KeyItemID, l.ItemID.String()).Msg("sold book no longer exists")
				continue
			}
			if err != nil {
				err = fmt.Errorf("failed finding bookId=%s with error=%w", l.ItemID, err)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.SellerStatistics{}, err
			}
			if book, ok := found.(item.Book); ok {
				books = append(books, book)
			}
		}
	}
	logger.Info().Int(log.KeyItems, len(books)).Msg("found purchased books")

	return response.SellerStatistics{
		TotalBuyers:    len(t.buyers),
		TotalPurchases: t.purchases,
		TotalRevenue:   t.revenue,
		PurchasedBooks: books,
	}, nil
}
