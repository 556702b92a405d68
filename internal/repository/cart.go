package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartItemColumns = "id, user_id, item_id, item_type, name, price, image_url, seller_id, quantity, created_at, updated_at"

func scanCart(row pgx.Row) (Cart, error) {
	var (
		cart                 Cart
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&cart.UserID, &createdAt, &updatedAt)
	if err != nil {
		return Cart{}, translate(err)
	}
	cart.CreatedAt = fromTimestamptz(createdAt)
	cart.UpdatedAt = fromTimestamptz(updatedAt)
	return cart, nil
}

func scanCartItem(row pgx.Row) (CartItem, error) {
	var (
		i                    CartItem
		price                pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ItemID,
		&i.ItemType,
		&i.Name,
		&price,
		&i.ImageURL,
		&i.SellerID,
		&i.Quantity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return CartItem{}, translate(err)
	}
	i.Price = fromNumeric(price)
	i.CreatedAt = fromTimestamptz(createdAt)
	i.UpdatedAt = fromTimestamptz(updatedAt)
	return i, nil
}

const upsertCart = `INSERT INTO carts (user_id) VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING user_id, created_at, updated_at`

// UpsertCart creates the cart on first use and holds its row lock until the transaction ends.
func (q *Queries) UpsertCart(c context.Context, userId uuid.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(c, upsertCart, userId))
}

const lockCartByUserId = `SELECT user_id, created_at, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`

func (q *Queries) LockCartByUserId(c context.Context, userId uuid.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(c, lockCartByUserId, userId))
}

const deleteCartByUserId = `DELETE FROM carts WHERE user_id = $1`

func (q *Queries) DeleteCartByUserId(c context.Context, userId uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartByUserId, userId)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}

const findCartItemsByUserId = `SELECT ` + cartItemColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at, id`

func (q *Queries) FindCartItemsByUserId(c context.Context, userId uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(c, findCartItemsByUserId, userId)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		i, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, translate(rows.Err())
}

const upsertCartItem = `INSERT INTO cart_items (` + cartItemColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, clock_timestamp(), clock_timestamp())
ON CONFLICT (user_id, item_id, item_type)
DO UPDATE SET quantity = cart_items.quantity + 1, updated_at = clock_timestamp()
RETURNING ` + cartItemColumns

// UpsertCartItem appends a line with quantity 1 or adds 1 to the existing line for the same item.
func (q *Queries) UpsertCartItem(c context.Context, arg UpsertCartItemParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(
		c,
		upsertCartItem,
		uuid.New(),
		arg.UserID,
		arg.ItemID,
		arg.ItemType,
		arg.Name,
		numeric(arg.Price),
		arg.ImageURL,
		arg.SellerID,
	))
}

const updateCartItemQuantity = `UPDATE cart_items SET quantity = $4, updated_at = clock_timestamp()
WHERE user_id = $1 AND item_id = $2 AND item_type = $3
RETURNING ` + cartItemColumns

func (q *Queries) UpdateCartItemQuantity(c context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(
		c,
		updateCartItemQuantity,
		arg.UserID,
		arg.ItemID,
		arg.ItemType,
		arg.Quantity,
	))
}

const deleteCartItem = `DELETE FROM cart_items WHERE user_id = $1 AND item_id = $2 AND item_type = $3`

func (q *Queries) DeleteCartItem(c context.Context, arg CartItemKey) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItem, arg.UserID, arg.ItemID, arg.ItemType)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}
