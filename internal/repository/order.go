package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = "id, user_id, items, total_price, billing_address, shipping_address, payment, created_at"

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o          Order
		totalPrice pgtype.Numeric
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Items,
		&totalPrice,
		&o.BillingAddress,
		&o.ShippingAddress,
		&o.Payment,
		&createdAt,
	)
	if err != nil {
		return Order{}, translate(err)
	}
	if o.Items == nil {
		o.Items = []OrderLine{}
	}
	o.TotalPrice = fromNumeric(totalPrice)
	o.CreatedAt = fromTimestamptz(createdAt)
	return o, nil
}

func (q *Queries) queryOrders(c context.Context, query string, args ...interface{}) ([]Order, error) {
	rows, err := q.db.Query(c, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, translate(rows.Err())
}

const insertOrder = `INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderColumns

func (q *Queries) InsertOrder(c context.Context, arg Order) (Order, error) {
	items := arg.Items
	if items == nil {
		items = []OrderLine{}
	}
	return scanOrder(q.db.QueryRow(
		c,
		insertOrder,
		arg.ID,
		arg.UserID,
		items,
		numeric(arg.TotalPrice),
		arg.BillingAddress,
		arg.ShippingAddress,
		arg.Payment,
		timestamptz(arg.CreatedAt),
	))
}

const findOrdersByUserId = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC NULLS LAST, id`

func (q *Queries) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]Order, error) {
	return q.queryOrders(c, findOrdersByUserId, userId)
}

const findOrders = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at NULLS LAST, id`

func (q *Queries) FindOrders(c context.Context) ([]Order, error) {
	return q.queryOrders(c, findOrders)
}
