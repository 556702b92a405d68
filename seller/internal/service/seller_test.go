package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
	"github.com/Alturino/marketplace/internal/repository"
	"github.com/Alturino/marketplace/internal/repository/repositorytest"
	"github.com/Alturino/marketplace/seller/pkg/request"
)

// 2025-03-14 is a Friday in ISO week 11.
var now = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s got %s", expected, actual)
}

func line(itemId, sellerId uuid.UUID, t item.Type, price int64, quantity int32) repository.OrderLine {
	return repository.OrderLine{
		ItemID:   itemId,
		Type:     t,
		Name:     itemId.String()[:8],
		Price:    decimal.NewFromInt(price),
		SellerID: sellerId,
		Quantity: quantity,
	}
}

func setup(t *testing.T, orders ...repository.Order) (*SellerService, *repositorytest.Store) {
	t.Helper()
	store := repositorytest.NewStore()
	for _, o := range orders {
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		_, err := store.InsertOrder(context.Background(), o)
		require.NoError(t, err)
	}
	service := NewSellerService(store, time.UTC)
	service.now = func() time.Time { return now }
	return service, store
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		name       string
		timeFrame  string
		expected   time.Time
		expectedOk bool
	}{
		{name: "today starts at midnight", timeFrame: "today", expected: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), expectedOk: true},
		{name: "week is seven days back", timeFrame: "WEEK", expected: now.AddDate(0, 0, -7), expectedOk: true},
		{name: "month is thirty days back", timeFrame: "month", expected: now.AddDate(0, 0, -30), expectedOk: true},
		{name: "year is 365 days back", timeFrame: "Year", expected: now.AddDate(0, 0, -365), expectedOk: true},
		{name: "all selects everything", timeFrame: "all"},
		{name: "empty selects everything", timeFrame: ""},
		{name: "unknown selects everything", timeFrame: "fortnight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, ok := cutoff(now, time.UTC, tt.timeFrame)
			assert.Equal(t, tt.expectedOk, ok)
			if tt.expectedOk {
				assert.True(t, tt.expected.Equal(actual), "expected %s got %s", tt.expected, actual)
			}
		})
	}
}

func TestFilterOrdersExcludesCutoffAndMissingTimestamps(t *testing.T) {
	from := now.AddDate(0, 0, -7)
	orders := []repository.Order{
		{ID: uuid.New(), CreatedAt: from},
		{ID: uuid.New(), CreatedAt: from.Add(time.Nanosecond)},
		{ID: uuid.New()},
		{ID: uuid.New(), CreatedAt: from.Add(-time.Hour)},
	}

	filtered := filterOrders(orders, from, true)
	require.Len(t, filtered, 1)
	assert.Equal(t, orders[1].ID, filtered[0].ID)

	assert.Len(t, filterOrders(orders, time.Time{}, false), 4)
}

func TestTimeKey(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		groupBy   string
		expected  string
	}{
		{name: "daily", createdAt: now, groupBy: "daily", expected: "2025-03-14"},
		{name: "weekly", createdAt: now, groupBy: "weekly", expected: "Week 11, 2025"},
		{name: "weekly uses the iso year", createdAt: time.Date(2024, time.December, 30, 12, 0, 0, 0, time.UTC), groupBy: "weekly", expected: "Week 1, 2025"},
		{name: "weekly never labels week zero", createdAt: time.Date(2021, time.January, 1, 12, 0, 0, 0, time.UTC), groupBy: "weekly", expected: "Week 53, 2020"},
		{name: "monthly", createdAt: now, groupBy: "monthly", expected: "MARCH 2025"},
		{name: "unknown group falls back to monthly", createdAt: now, groupBy: "hourly", expected: "MARCH 2025"},
		{name: "missing timestamp", groupBy: "daily", expected: UnknownTimeKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, _ := timeKey(tt.createdAt, time.UTC, tt.groupBy)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestGetSellerSalesAnalytics(t *testing.T) {
	sellerA, sellerB := uuid.New(), uuid.New()
	itemA, itemB := uuid.New(), uuid.New()
	buyer := uuid.New()

	service, _ := setup(t,
		repository.Order{
			UserID:    buyer,
			CreatedAt: now.Add(-48 * time.Hour),
			Items: []repository.OrderLine{
				line(itemA, sellerA, item.TypeBook, 10, 2),
				line(itemB, sellerB, item.TypeHome, 5, 1),
			},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: now.AddDate(0, 0, -10),
			Items:     []repository.OrderLine{line(itemA, sellerA, item.TypeBook, 10, 4)},
		},
	)

	tests := []struct {
		name              string
		timeFrame         string
		expectedBuyers    int
		expectedPurchases int64
		expectedRevenue   string
		expectedAverage   string
	}{
		{name: "last week", timeFrame: "week", expectedBuyers: 1, expectedPurchases: 2, expectedRevenue: "20", expectedAverage: "10"},
		{name: "all time", timeFrame: "all", expectedBuyers: 2, expectedPurchases: 6, expectedRevenue: "60", expectedAverage: "10"},
		{name: "today has nothing", timeFrame: "today", expectedRevenue: "0", expectedAverage: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := service.GetSellerSalesAnalytics(
				context.Background(),
				request.Analytics{SellerId: sellerA, TimeFrame: tt.timeFrame},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedBuyers, actual.TotalBuyers)
			assert.Equal(t, tt.expectedPurchases, actual.TotalPurchases)
			assertDecimal(t, tt.expectedRevenue, actual.TotalRevenue)
			assertDecimal(t, tt.expectedAverage, actual.AverageOrderValue)
		})
	}
}

func TestGetSellerSalesAnalyticsCountsBuyerOncePerOrder(t *testing.T) {
	seller, buyer := uuid.New(), uuid.New()
	service, _ := setup(t,
		repository.Order{
			UserID:    buyer,
			CreatedAt: now.Add(-time.Hour),
			Items: []repository.OrderLine{
				line(uuid.New(), seller, item.TypeBook, 3, 1),
				line(uuid.New(), seller, item.TypeHome, 4, 1),
			},
		},
		repository.Order{
			UserID:    buyer,
			CreatedAt: now.Add(-2 * time.Hour),
			Items:     []repository.OrderLine{line(uuid.New(), seller, item.TypeBook, 3, 1)},
		},
	)

	actual, err := service.GetSellerSalesAnalytics(context.Background(), request.Analytics{SellerId: seller})
	require.NoError(t, err)
	assert.Equal(t, 1, actual.TotalBuyers)
	assert.EqualValues(t, 3, actual.TotalPurchases)
	assertDecimal(t, "10", actual.TotalRevenue)
}

func TestGetSellerSalesAnalyticsPropagatesStoreFailure(t *testing.T) {
	service, store := setup(t)
	store.Fail("FindOrders", inErrors.ErrUnexpected)

	_, err := service.GetSellerSalesAnalytics(context.Background(), request.Analytics{SellerId: uuid.New()})
	assert.ErrorIs(t, err, inErrors.ErrUnexpected)
}

func TestGetTopSellingProducts(t *testing.T) {
	seller := uuid.New()
	cheap, mid, pricey := uuid.New(), uuid.New(), uuid.New()
	service, _ := setup(t,
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: now.Add(-time.Hour),
			Items: []repository.OrderLine{
				line(cheap, seller, item.TypeBook, 1, 10),
				line(mid, seller, item.TypeHome, 6, 3),
				line(pricey, seller, item.TypeBook, 50, 1),
				line(uuid.New(), uuid.New(), item.TypeBook, 1000, 1),
			},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: now.Add(-2 * time.Hour),
			Items:     []repository.OrderLine{line(mid, seller, item.TypeHome, 6, 2)},
		},
	)

	tests := []struct {
		name     string
		metric   string
		limit    int
		expected []uuid.UUID
	}{
		{name: "revenue with limit one", metric: "revenue", limit: 1, expected: []uuid.UUID{pricey}},
		{name: "revenue ranking", metric: "revenue", limit: 3, expected: []uuid.UUID{pricey, mid, cheap}},
		{name: "quantity ranking by default", metric: "", limit: 0, expected: []uuid.UUID{cheap, mid, pricey}},
		{name: "quantity with limit two", metric: "quantity", limit: 2, expected: []uuid.UUID{cheap, mid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := service.GetTopSellingProducts(
				context.Background(),
				request.Analytics{SellerId: seller, Metric: tt.metric, Limit: tt.limit},
			)
			require.NoError(t, err)
			ids := make([]uuid.UUID, len(actual))
			for i, p := range actual {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	actual, err := service.GetTopSellingProducts(
		context.Background(),
		request.Analytics{SellerId: seller, Metric: "quantity", Limit: 5},
	)
	require.NoError(t, err)
	require.Len(t, actual, 3)
	assert.EqualValues(t, 5, actual[1].Quantity)
	assertDecimal(t, "30", actual[1].Revenue)
	assert.Equal(t, item.TypeHome, actual[1].Type)
}

func TestGetTopSellingProductsKeepsFirstSeenOrderOnTies(t *testing.T) {
	seller := uuid.New()
	first, second := uuid.New(), uuid.New()
	service, _ := setup(t, repository.Order{
		UserID:    uuid.New(),
		CreatedAt: now.Add(-time.Hour),
		Items: []repository.OrderLine{
			line(first, seller, item.TypeBook, 5, 2),
			line(second, seller, item.TypeBook, 5, 2),
		},
	})

	actual, err := service.GetTopSellingProducts(
		context.Background(),
		request.Analytics{SellerId: seller, Metric: "revenue"},
	)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assert.Equal(t, first, actual[0].ID)
	assert.Equal(t, second, actual[1].ID)
}

func TestGetSalesByCategory(t *testing.T) {
	seller := uuid.New()
	service, _ := setup(t, repository.Order{
		UserID:    uuid.New(),
		CreatedAt: now.Add(-time.Hour),
		Items: []repository.OrderLine{
			line(uuid.New(), seller, item.TypeBook, 10, 2),
			line(uuid.New(), seller, item.TypeBook, 4, 1),
			line(uuid.New(), seller, item.TypeHome, 7, 3),
			line(uuid.New(), uuid.New(), item.TypeHome, 100, 1),
		},
	})

	actual, err := service.GetSalesByCategory(context.Background(), request.Analytics{SellerId: seller, TimeFrame: "today"})
	require.NoError(t, err)
	require.Len(t, actual.Categories, 2)

	books := actual.Categories[CategoryBooks]
	assert.Equal(t, CategoryBooks, books.Name)
	assert.EqualValues(t, 3, books.Count)
	assertDecimal(t, "24", books.Revenue)

	home := actual.Categories[CategoryHome]
	assert.Equal(t, CategoryHome, home.Name)
	assert.EqualValues(t, 3, home.Count)
	assertDecimal(t, "21", home.Revenue)
}

func TestGetSalesByCategoryWithoutSalesKeepsBothBuckets(t *testing.T) {
	service, _ := setup(t)

	actual, err := service.GetSalesByCategory(context.Background(), request.Analytics{SellerId: uuid.New()})
	require.NoError(t, err)
	require.Len(t, actual.Categories, 2)
	assert.Zero(t, actual.Categories[CategoryBooks].Count)
	assert.Zero(t, actual.Categories[CategoryHome].Count)
}

func TestGetRevenueOverTime(t *testing.T) {
	seller := uuid.New()
	service, _ := setup(t,
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: time.Date(2025, time.March, 14, 8, 0, 0, 0, time.UTC),
			Items:     []repository.OrderLine{line(uuid.New(), seller, item.TypeBook, 10, 1)},
		},
		repository.Order{
			UserID:    uuid.New(),
			Items:     []repository.OrderLine{line(uuid.New(), seller, item.TypeBook, 1, 1)},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC),
			Items:     []repository.OrderLine{line(uuid.New(), seller, item.TypeHome, 5, 2)},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: time.Date(2025, time.February, 2, 9, 0, 0, 0, time.UTC),
			Items:     []repository.OrderLine{line(uuid.New(), seller, item.TypeHome, 3, 1)},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC),
			Items:     []repository.OrderLine{line(uuid.New(), uuid.New(), item.TypeHome, 3, 1)},
		},
	)

	tests := []struct {
		name           string
		timeFrame      string
		groupBy        string
		expectedLabels []string
		expectedValues []string
	}{
		{
			name:           "daily sums same day orders",
			groupBy:        "daily",
			expectedLabels: []string{"2025-02-02", "2025-03-14", UnknownTimeKey},
			expectedValues: []string{"3", "20", "1"},
		},
		{
			name:           "weekly",
			groupBy:        "weekly",
			expectedLabels: []string{"Week 5, 2025", "Week 11, 2025", UnknownTimeKey},
			expectedValues: []string{"3", "20", "1"},
		},
		{
			name:           "monthly by default",
			expectedLabels: []string{"FEBRUARY 2025", "MARCH 2025", UnknownTimeKey},
			expectedValues: []string{"3", "20", "1"},
		},
		{
			name:           "filtered by week drops untimed orders",
			timeFrame:      "week",
			groupBy:        "daily",
			expectedLabels: []string{"2025-03-14"},
			expectedValues: []string{"20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := service.GetRevenueOverTime(
				context.Background(),
				request.Analytics{SellerId: seller, TimeFrame: tt.timeFrame, GroupBy: tt.groupBy},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedLabels, actual.TimeLabels)
			require.Len(t, actual.RevenueValues, len(tt.expectedValues))
			for i, v := range tt.expectedValues {
				assertDecimal(t, v, actual.RevenueValues[i])
			}
		})
	}
}

func TestGetSellerStatistics(t *testing.T) {
	seller, buyer := uuid.New(), uuid.New()
	book := item.Book{Listing: item.Listing{ID: uuid.New(), Title: "Dune", SellerID: seller}, Author: "Frank Herbert"}
	goneBook := uuid.New()

	service, store := setup(t,
		repository.Order{
			UserID: buyer,
			Items: []repository.OrderLine{
				line(book.ID, seller, item.TypeBook, 10, 1),
				line(goneBook, seller, item.TypeBook, 8, 1),
				line(uuid.New(), seller, item.TypeHome, 2, 2),
			},
		},
		repository.Order{
			UserID:    uuid.New(),
			CreatedAt: now.AddDate(-2, 0, 0),
			Items:     []repository.OrderLine{line(book.ID, seller, item.TypeBook, 10, 1)},
		},
	)
	_, err := store.InsertItem(context.Background(), book)
	require.NoError(t, err)

	actual, err := service.GetSellerStatistics(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, 2, actual.TotalBuyers)
	assert.EqualValues(t, 5, actual.TotalPurchases)
	assertDecimal(t, "32", actual.TotalRevenue)
	require.Len(t, actual.PurchasedBooks, 1)
	assert.Equal(t, book.ID, actual.PurchasedBooks[0].ID)
	assert.Equal(t, "Frank Herbert", actual.PurchasedBooks[0].Author)
}
