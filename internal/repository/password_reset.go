package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const passwordResetTokenColumns = "token, user_id, expires_at, created_at"

func scanPasswordResetToken(row pgx.Row) (PasswordResetToken, error) {
	var (
		t                    PasswordResetToken
		expiresAt, createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&t.Token, &t.UserID, &expiresAt, &createdAt); err != nil {
		return PasswordResetToken{}, translate(err)
	}
	t.ExpiresAt = fromTimestamptz(expiresAt)
	t.CreatedAt = fromTimestamptz(createdAt)
	return t, nil
}

const insertPasswordResetToken = `INSERT INTO password_reset_tokens (` + passwordResetTokenColumns + `)
VALUES ($1, $2, $3, now())
RETURNING ` + passwordResetTokenColumns

func (q *Queries) InsertPasswordResetToken(c context.Context, arg PasswordResetToken) (PasswordResetToken, error) {
	return scanPasswordResetToken(q.db.QueryRow(
		c,
		insertPasswordResetToken,
		arg.Token,
		arg.UserID,
		timestamptz(arg.ExpiresAt),
	))
}

const findPasswordResetToken = `SELECT ` + passwordResetTokenColumns + ` FROM password_reset_tokens WHERE token = $1`

func (q *Queries) FindPasswordResetToken(c context.Context, token uuid.UUID) (PasswordResetToken, error) {
	return scanPasswordResetToken(q.db.QueryRow(c, findPasswordResetToken, token))
}

const deletePasswordResetToken = `DELETE FROM password_reset_tokens WHERE token = $1`

func (q *Queries) DeletePasswordResetToken(c context.Context, token uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deletePasswordResetToken, token)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}
