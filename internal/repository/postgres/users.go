package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
	"github.com/akulikov/streamtube/internal/repository"
)

type UserRepo struct {
	db DBTX
}

const userColumns = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`

const createUser = `-- name: CreateUser
INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.db.Query(ctx, createUser,
		arg.Username, arg.Email, arg.FullName, arg.Avatar, arg.CoverImage, arg.HashedPassword,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByLogin = `-- name: GetUserByLogin
SELECT ` + userColumns + `
FROM users
WHERE username = $1 OR email = $1
`

// Get user by username or email, whichever matches
func (r *UserRepo) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByLogin, login)
	return collectUser(rows)
}

const setRefreshToken = `-- name: SetRefreshToken
UPDATE users
SET refresh_token = $2, updated_at = now()
WHERE id = $1
`

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error {
	tag, err := r.db.Exec(ctx, setRefreshToken, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const swapRefreshToken = `-- name: SwapRefreshToken
UPDATE users
SET refresh_token = $3, updated_at = now()
WHERE id = $1 AND refresh_token = $2
`

// Single conditional UPDATE, so two concurrent rotations presenting the
// same token can't both succeed: the row predicate fails for the loser
func (r *UserRepo) SwapRefreshToken(ctx context.Context, userID uuid.UUID, expected string, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, swapRefreshToken, userID, expected, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

const updatePasswordHash = `-- name: UpdatePasswordHash
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE id = $1
`

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, updatePasswordHash, userID, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const updateAccount = `-- name: UpdateAccount
UPDATE users
SET full_name = $2, email = $3, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateAccount(ctx context.Context, userID uuid.UUID, arg repository.UpdateAccountParams) (models.User, error) {
	rows, _ := r.db.Query(ctx, updateAccount, userID, arg.FullName, arg.Email)
	user, err := collectUser(rows)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
	}

	return user, err
}

const updateAvatar = `-- name: UpdateAvatar
UPDATE users
SET avatar = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar string) (models.User, error) {
	rows, _ := r.db.Query(ctx, updateAvatar, userID, avatar)
	return collectUser(rows)
}

const updateCoverImage = `-- name: UpdateCoverImage
UPDATE users
SET cover_image = $2, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateCoverImage(ctx context.Context, userID uuid.UUID, coverImage string) (models.User, error) {
	rows, _ := r.db.Query(ctx, updateCoverImage, userID, coverImage)
	return collectUser(rows)
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.HashedPassword, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}
