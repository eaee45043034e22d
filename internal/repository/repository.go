package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/akulikov/streamtube/internal/models"
)

type CreateUserParams struct {
	Username       string
	Email          string
	FullName       string
	Avatar         string
	CoverImage     string
	HashedPassword string
}

type UpdateAccountParams struct {
	FullName string
	Email    string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If a user with the same username or email exists already
	// has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id, or by username or email (any may match)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByLogin(ctx context.Context, login string) (models.User, error)

	// Overwrite the stored refresh token unconditionally
	// Nil clears it (logout)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error

	// Replace the stored refresh token only if it currently equals 'expected'.
	// Returns false and changes nothing otherwise. Must be a single atomic
	// statement: two concurrent rotations with the same token race here and
	// exactly one may win.
	SwapRefreshToken(ctx context.Context, userID uuid.UUID, expected string, token string) (bool, error)

	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error

	UpdateAccount(ctx context.Context, userID uuid.UUID, arg UpdateAccountParams) (models.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar string) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, coverImage string) (models.User, error)
}

// Storage aggregates repositories so services can depend on one thing
type Storage interface {
	User() UserRepo

	// Run fn within a db transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
