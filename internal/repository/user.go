package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = "id, username, email, password, first_name, last_name, phone, is_seller, created_at, updated_at"

func scanUser(row pgx.Row) (User, error) {
	var (
		u                    User
		phone                pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.FirstName,
		&u.LastName,
		&phone,
		&u.IsSeller,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return User{}, translate(err)
	}
	u.Phone = phone.String
	u.CreatedAt = fromTimestamptz(createdAt)
	u.UpdatedAt = fromTimestamptz(updatedAt)
	return u, nil
}

const insertUser = `INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING ` + userColumns

func (q *Queries) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	createdAt := arg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return scanUser(q.db.QueryRow(
		c,
		insertUser,
		arg.ID,
		arg.Username,
		arg.Email,
		arg.Password,
		arg.FirstName,
		arg.LastName,
		text(arg.Phone),
		arg.IsSeller,
		timestamptz(createdAt),
	))
}

const findUserById = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) FindUserById(c context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(c, findUserById, id))
}

const findUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

func (q *Queries) FindUserByUsername(c context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRow(c, findUserByUsername, username))
}

const findUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) FindUserByEmail(c context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(c, findUserByEmail, email))
}

const findUserConflicts = `SELECT
    COALESCE(bool_or(username = $1), false),
    COALESCE(bool_or(email = $2), false),
    COALESCE(bool_or(phone = $3), false)
FROM users
WHERE username = $1 OR email = $2 OR phone = $3`

func (q *Queries) FindUserConflicts(c context.Context, username, email, phone string) (UserConflicts, error) {
	var conflicts UserConflicts
	err := q.db.QueryRow(c, findUserConflicts, username, email, text(phone)).
		Scan(&conflicts.Username, &conflicts.Email, &conflicts.Phone)
	if err != nil {
		return UserConflicts{}, translate(err)
	}
	return conflicts, nil
}

const updateUserPassword = `UPDATE users SET password = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns

func (q *Queries) UpdateUserPassword(c context.Context, id uuid.UUID, password string) (User, error) {
	return scanUser(q.db.QueryRow(c, updateUserPassword, id, password))
}
