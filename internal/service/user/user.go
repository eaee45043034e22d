package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
	"github.com/akulikov/streamtube/internal/repository"
	"github.com/akulikov/streamtube/internal/service/auth"
)

type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string

	// Avatar is the stored object URL, required.
	// CoverImage is optional, empty string means not set
	Avatar     string
	CoverImage string
}

// UserService owns the user records: registration and profile updates.
// Password hashing happens here exactly once, on register. Profile
// updates never touch the password hash.
type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Register creates the user after normalizing the identity fields.
// Username and email are stored trimmed and lowercased, so uniqueness
// is case-insensitive.
func (s *UserService) Register(ctx context.Context, arg RegisterParams) (models.User, error) {
	var user models.User

	arg.Username = strings.ToLower(strings.TrimSpace(arg.Username))
	arg.Email = strings.ToLower(strings.TrimSpace(arg.Email))
	arg.FullName = strings.TrimSpace(arg.FullName)

	if arg.Username == "" || arg.Email == "" || arg.FullName == "" || arg.Password == "" {
		return user, errors.New("all fields are required")
	}
	if arg.Avatar == "" {
		return user, errors.New("avatar is required")
	}

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", apperrors.ErrInvalidCredentials)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Username:       arg.Username,
		Email:          arg.Email,
		FullName:       arg.FullName,
		Avatar:         arg.Avatar,
		CoverImage:     arg.CoverImage,
		HashedPassword: hash,
	})
	if err != nil {
		return user, err
	}

	return user.Snapshot(), nil
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return user, err
	}
	return user.Snapshot(), nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName string, email string) (models.User, error) {
	var user models.User

	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return user, errors.New("all fields are required")
	}

	user, err := s.storage.User().UpdateAccount(ctx, userID, repository.UpdateAccountParams{
		FullName: fullName,
		Email:    email,
	})
	if err != nil {
		return user, err
	}

	return user.Snapshot(), nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar string) (models.User, error) {
	if avatar == "" {
		return models.User{}, errors.New("avatar is required")
	}

	user, err := s.storage.User().UpdateAvatar(ctx, userID, avatar)
	if err != nil {
		return user, err
	}
	return user.Snapshot(), nil
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, coverImage string) (models.User, error) {
	user, err := s.storage.User().UpdateCoverImage(ctx, userID, coverImage)
	if err != nil {
		return user, err
	}
	return user.Snapshot(), nil
}
