package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	inErrors "github.com/Alturino/marketplace/internal/errors"
	"github.com/Alturino/marketplace/internal/item"
)

const (
	bookColumns = "id, title, author, description, price, image_url, seller_id, total_quantity, ratings, reviews, created_at, updated_at"
	homeColumns = "id, title, manufacturer, category, description, price, image_url, seller_id, total_quantity, ratings, reviews, created_at, updated_at"
)

type itemTable struct {
	name    string
	columns string
	scan    func(pgx.Row) (item.Item, error)
}

var itemTables = map[item.Type]itemTable{
	item.TypeBook: {name: "books", columns: bookColumns, scan: scanBook},
	item.TypeHome: {name: "home_items", columns: homeColumns, scan: scanHomeItem},
}

func tableOf(t item.Type) (itemTable, error) {
	table, ok := itemTables[t]
	if !ok {
		return itemTable{}, fmt.Errorf("unsupported item type=%s with error=%w", t, inErrors.ErrInvalidInput)
	}
	return table, nil
}

type listingRow struct {
	price     pgtype.Numeric
	createdAt pgtype.Timestamptz
	updatedAt pgtype.Timestamptz
}

func (r listingRow) apply(l *item.Listing) {
	l.Price = fromNumeric(r.price)
	l.CreatedAt = fromTimestamptz(r.createdAt)
	l.UpdatedAt = fromTimestamptz(r.updatedAt)
	if l.Reviews == nil {
		l.Reviews = []item.Review{}
	}
}

func scanBook(row pgx.Row) (item.Item, error) {
	var (
		b   item.Book
		raw listingRow
	)
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&raw.price,
		&b.ImageURL,
		&b.SellerID,
		&b.TotalQuantity,
		&b.Ratings,
		&b.Reviews,
		&raw.createdAt,
		&raw.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	raw.apply(&b.Listing)
	return b, nil
}

func scanHomeItem(row pgx.Row) (item.Item, error) {
	var (
		h   item.HomeItem
		raw listingRow
	)
	err := row.Scan(
		&h.ID,
		&h.Title,
		&h.Manufacturer,
		&h.Category,
		&h.Description,
		&raw.price,
		&h.ImageURL,
		&h.SellerID,
		&h.TotalQuantity,
		&h.Ratings,
		&h.Reviews,
		&raw.createdAt,
		&raw.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	raw.apply(&h.Listing)
	return h, nil
}

func (q *Queries) queryItem(c context.Context, t item.Type, query func(itemTable) string, args ...interface{}) (item.Item, error) {
	table, err := tableOf(t)
	if err != nil {
		return nil, err
	}
	i, err := table.scan(q.db.QueryRow(c, query(table), args...))
	return i, translate(err)
}

func (q *Queries) queryItems(c context.Context, t item.Type, query func(itemTable) string, args ...interface{}) ([]item.Item, error) {
	table, err := tableOf(t)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.Query(c, query(table), args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	items := []item.Item{}
	for rows.Next() {
		i, err := table.scan(rows)
		if err != nil {
			return nil, translate(err)
		}
		items = append(items, i)
	}
	return items, translate(rows.Err())
}

func (q *Queries) InsertItem(c context.Context, i item.Item) (item.Item, error) {
	l := i.Details()
	reviews := l.Reviews
	if reviews == nil {
		reviews = []item.Review{}
	}
	now := time.Now()
	switch v := i.(type) {
	case item.Book:
		return q.queryItem(c, item.TypeBook, func(tb itemTable) string {
			return "INSERT INTO books (" + tb.columns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING " + tb.columns
		}, l.ID, l.Title, v.Author, l.Description, numeric(l.Price), l.ImageURL, l.SellerID, l.TotalQuantity, l.Ratings, reviews, timestamptz(now))
	case item.HomeItem:
		return q.queryItem(c, item.TypeHome, func(tb itemTable) string {
			return "INSERT INTO home_items (" + tb.columns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING " + tb.columns
		}, l.ID, l.Title, v.Manufacturer, v.Category, l.Description, numeric(l.Price), l.ImageURL, l.SellerID, l.TotalQuantity, l.Ratings, reviews, timestamptz(now))
	default:
		return nil, fmt.Errorf("unsupported item type=%s with error=%w", i.Type(), inErrors.ErrInvalidInput)
	}
}

func (q *Queries) FindItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.queryItem(c, t, func(tb itemTable) string {
		return "SELECT " + tb.columns + " FROM " + tb.name + " WHERE id = $1"
	}, id)
}

func (q *Queries) LockItemById(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.queryItem(c, t, func(tb itemTable) string {
		return "SELECT " + tb.columns + " FROM " + tb.name + " WHERE id = $1 FOR UPDATE"
	}, id)
}

func (q *Queries) FindItemByTitleAndSellerId(c context.Context, t item.Type, title string, sellerId uuid.UUID) (item.Item, error) {
	return q.queryItem(c, t, func(tb itemTable) string {
		return "SELECT " + tb.columns + " FROM " + tb.name + " WHERE title = $1 AND seller_id = $2"
	}, title, sellerId)
}

func (q *Queries) FindItems(c context.Context, t item.Type) ([]item.Item, error) {
	return q.queryItems(c, t, func(tb itemTable) string {
		return "SELECT " + tb.columns + " FROM " + tb.name + " ORDER BY created_at, id"
	})
}

func (q *Queries) FindItemsBySellerId(c context.Context, t item.Type, sellerId uuid.UUID) ([]item.Item, error) {
	return q.queryItems(c, t, func(tb itemTable) string {
		return "SELECT " + tb.columns + " FROM " + tb.name + " WHERE seller_id = $1 ORDER BY created_at, id"
	}, sellerId)
}

// DecrementItemQuantity returns ErrNotFound when the item is missing or has no stock left.
func (q *Queries) DecrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.queryItem(c, t, func(tb itemTable) string {
		return "UPDATE " + tb.name + " SET total_quantity = total_quantity - 1, updated_at = now() WHERE id = $1 AND total_quantity > 0 RETURNING " + tb.columns
	}, id)
}

func (q *Queries) IncrementItemQuantity(c context.Context, t item.Type, id uuid.UUID) (item.Item, error) {
	return q.queryItem(c, t, func(tb itemTable) string {
		return "UPDATE " + tb.name + " SET total_quantity = total_quantity + 1, updated_at = now() WHERE id = $1 RETURNING " + tb.columns
	}, id)
}

func (q *Queries) UpdateItemReviews(c context.Context, arg UpdateItemReviewsParams) (item.Item, error) {
	reviews := arg.Reviews
	if reviews == nil {
		reviews = []item.Review{}
	}
	return q.queryItem(c, arg.Type, func(tb itemTable) string {
		return "UPDATE " + tb.name + " SET reviews = $2, ratings = $3, updated_at = now() WHERE id = $1 RETURNING " + tb.columns
	}, arg.ID, reviews, arg.Ratings)
}
