package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `
INSERT INTO users (id, created_at, username, password_hash)
VALUES (?, ?, ?, ?)
`

func (r *UserRepo) CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error) {
	user := models.User{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		Username:       username,
		HashedPassword: hashedPassword,
	}

	_, err := r.DB.ExecContext(ctx, createUser, user.ID, user.CreatedAt, user.Username, user.HashedPassword)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperrors.ErrUserAlreadyExists
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `
SELECT id, created_at, username, password_hash FROM users
WHERE id = ?
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `
SELECT id, created_at, username, password_hash FROM users
WHERE username = ?
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, getUserByUsername, username))
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.HashedPassword)

	switch {
	case err == nil:
		u.CreatedAt = u.CreatedAt.UTC()
		return u, nil
	case errors.Is(err, sql.ErrNoRows):
		return models.User{}, apperrors.ErrUserNotFound
	default:
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
