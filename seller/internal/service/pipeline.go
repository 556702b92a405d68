package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/marketplace/internal/repository"
)

const (
	TimeFrameToday = "today"
	TimeFrameWeek  = "week"
	TimeFrameMonth = "month"
	TimeFrameYear  = "year"

	GroupByDaily   = "daily"
	GroupByWeekly  = "weekly"
	GroupByMonthly = "monthly"

	MetricRevenue  = "revenue"
	MetricQuantity = "quantity"

	CategoryBooks = "books"
	CategoryHome  = "home"

	UnknownTimeKey = "unknown"

	defaultTopProductsLimit = 5
)

// cutoff returns the instant orders must be strictly after. ok is false when
// the time frame selects the whole history.
func cutoff(now time.Time, loc *time.Location, timeFrame string) (time.Time, bool) {
	now = now.In(loc)
	switch strings.ToLower(strings.TrimSpace(timeFrame)) {
	case TimeFrameToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	case TimeFrameWeek:
		return now.AddDate(0, 0, -7), true
	case TimeFrameMonth:
		return now.AddDate(0, 0, -30), true
	case TimeFrameYear:
		return now.AddDate(0, 0, -365), true
	default:
		return time.Time{}, false
	}
}

func filterOrders(orders []repository.Order, from time.Time, ok bool) []repository.Order {
	if !ok {
		return orders
	}
	filtered := make([]repository.Order, 0, len(orders))
	for _, o := range orders {
		if o.CreatedAt.IsZero() || !o.CreatedAt.After(from) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// sellerLines keeps the lines of o sold by sellerId.
func sellerLines(o repository.Order, sellerId uuid.UUID) []repository.OrderLine {
	var lines []repository.OrderLine
	for _, l := range o.Items {
		if l.SellerID == sellerId {
			lines = append(lines, l)
		}
	}
	return lines
}

type totals struct {
	buyers    map[uuid.UUID]struct{}
	purchases int64
	revenue   decimal.Decimal
}

func foldTotals(orders []repository.Order, sellerId uuid.UUID) totals {
	t := totals{buyers: map[uuid.UUID]struct{}{}, revenue: decimal.Zero}
	for _, o := range orders {
		lines := sellerLines(o, sellerId)
		if len(lines) == 0 {
			continue
		}
		t.buyers[o.UserID] = struct{}{}
		for _, l := range lines {
			t.purchases += int64(l.Quantity)
			t.revenue = t.revenue.Add(l.Revenue())
		}
	}
	return t
}

type timeBucket struct {
	label   string
	start   time.Time
	revenue decimal.Decimal
}

// timeKey returns the bucket label of createdAt and the instant the bucket starts.
// Weekly labels pair the ISO week with the ISO year, so 2024-12-30 is "Week 1, 2025"
// and 2021-01-01 is "Week 53, 2020". No date falls in a week 0.
func timeKey(createdAt time.Time, loc *time.Location, groupBy string) (string, time.Time) {
	if createdAt.IsZero() {
		return UnknownTimeKey, time.Time{}
	}
	t := createdAt.In(loc)
	y, m, d := t.Date()
	switch strings.ToLower(strings.TrimSpace(groupBy)) {
	case GroupByDaily:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return start.Format(time.DateOnly), start
	case GroupByWeekly:
		isoYear, isoWeek := t.ISOWeek()
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return fmt.Sprintf("Week %d, %d", isoWeek, isoYear), start
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return fmt.Sprintf("%s %d", strings.ToUpper(m.String()), y), start
	}
}
