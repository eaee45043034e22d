package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
	"github.com/akulikov/streamtube/internal/repository"
	"github.com/akulikov/streamtube/internal/service/auth/tokencodec"
)

type Config struct {
	// Secrets to sign access and refresh tokens. Both required
	AccessSecret  string
	RefreshSecret string

	// Token lifetimes. Zero means codec defaults
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Hasher to use during login or password change
	// If not set the default bcrypt hasher is used
	Hasher PasswordHasher
}

// AuthService owns the session lifecycle: it mints the token pair on
// login, rotates it on refresh and resolves access tokens to users.
type AuthService struct {
	codec   *tokencodec.Codec
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	codec, err := tokencodec.New(tokencodec.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &AuthService{
		codec:   codec,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Login verifies credentials and starts a session: mints a fresh token
// pair and stores the refresh token on the user row, replacing
// whatever was there before.
// Returns apperrors.ErrUserNotFound if no user matches login and
// apperrors.ErrInvalidCredentials if the password is wrong.
func (s *AuthService) Login(ctx context.Context, login string, password string) (models.TokenPair, models.User, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByLogin(ctx, login)
	if err != nil {
		return pair, models.User{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, models.User{}, apperrors.ErrInvalidCredentials
	}

	pair, err = s.codec.IssuePair(user)
	if err != nil {
		return pair, models.User{}, err
	}

	err = s.storage.User().SetRefreshToken(ctx, user.ID, &pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, models.User{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, user.Snapshot(), nil
}

// Refresh rotates the token pair: the presented refresh token must be
// well signed, not expired and equal to the token currently stored for
// the user. On success the stored token is atomically swapped for the
// new one, so the presented token can never be used again.
//
// Errors:
//   - apperrors.ErrTokenMissing: empty token
//   - apperrors.ErrTokenInvalid: bad signature, expired, or unknown user
//   - apperrors.ErrRefreshReused: token was rotated out already
//   - apperrors.ErrRefreshConflict: a concurrent refresh won the swap
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	if refresh == "" {
		return pair, apperrors.ErrTokenMissing
	}

	userID, err := s.codec.ParseRefresh(refresh)
	if err != nil {
		return pair, err
	}

	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return pair, apperrors.ErrTokenInvalid
		}
		return pair, err
	}

	// Signature validity alone is not enough. The stored value is the
	// single source of truth, a mismatch means this token was used before.
	if user.RefreshToken == nil || *user.RefreshToken != refresh {
		return pair, apperrors.ErrRefreshReused
	}

	pair, err = s.codec.IssuePair(user)
	if err != nil {
		return pair, err
	}

	swapped, err := s.storage.User().SwapRefreshToken(ctx, user.ID, refresh, pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}
	if !swapped {
		// Another refresh with the same token got there first.
		// No retry here, that's the caller's call.
		return models.TokenPair{}, apperrors.ErrRefreshConflict
	}

	return pair, nil
}

// Logout clears the stored refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	err := s.storage.User().SetRefreshToken(ctx, userID, nil)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("error while clearing refresh token. Err: %w", err)
	}
	return nil
}

// ChangePassword re-hashes and stores the new password after checking
// the old one. Outstanding tokens are not revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword string, newPassword string) error {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, oldPassword); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.ErrInvalidCredentials
	}

	return s.storage.User().UpdatePasswordHash(ctx, userID, hash)
}

// Authenticate resolves an access token to a user snapshot. Pure read,
// no state changes. The snapshot never carries the password hash or
// the stored refresh token.
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	if access == "" {
		return models.User{}, apperrors.ErrTokenMissing
	}

	claims, err := s.codec.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, apperrors.ErrTokenInvalid
		}
		return models.User{}, err
	}

	return user.Snapshot(), nil
}
