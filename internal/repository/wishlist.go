package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const wishlistItemColumns = "id, user_id, item_id, item_type, name, image_url, created_at"

func scanWishlistItem(row pgx.Row) (WishlistItem, error) {
	var (
		w         WishlistItem
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&w.ID, &w.UserID, &w.ItemID, &w.ItemType, &w.Name, &w.ImageURL, &createdAt)
	if err != nil {
		return WishlistItem{}, translate(err)
	}
	w.CreatedAt = fromTimestamptz(createdAt)
	return w, nil
}

const insertWishlistItem = `INSERT INTO wishlist_items (` + wishlistItemColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp())
RETURNING ` + wishlistItemColumns

// InsertWishlistItem fails with ErrConflict when the user already saved the item.
func (q *Queries) InsertWishlistItem(c context.Context, arg WishlistItem) (WishlistItem, error) {
	return scanWishlistItem(q.db.QueryRow(
		c,
		insertWishlistItem,
		arg.ID,
		arg.UserID,
		arg.ItemID,
		arg.ItemType,
		arg.Name,
		arg.ImageURL,
	))
}

const findWishlistItemById = `SELECT ` + wishlistItemColumns + ` FROM wishlist_items WHERE id = $1 AND user_id = $2`

func (q *Queries) FindWishlistItemById(c context.Context, userId uuid.UUID, id uuid.UUID) (WishlistItem, error) {
	return scanWishlistItem(q.db.QueryRow(c, findWishlistItemById, id, userId))
}

const findWishlistItemsByUserId = `SELECT ` + wishlistItemColumns + ` FROM wishlist_items WHERE user_id = $1 ORDER BY created_at, id`

func (q *Queries) FindWishlistItemsByUserId(c context.Context, userId uuid.UUID) ([]WishlistItem, error) {
	rows, err := q.db.Query(c, findWishlistItemsByUserId, userId)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	items := []WishlistItem{}
	for rows.Next() {
		w, err := scanWishlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, translate(rows.Err())
}

const deleteWishlistItem = `DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`

func (q *Queries) DeleteWishlistItem(c context.Context, userId uuid.UUID, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteWishlistItem, id, userId)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}
