package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/akulikov/streamtube/internal/models"
	"github.com/akulikov/streamtube/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	users *UserHandler,
	authMiddleware func(http.Handler) http.Handler,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	apiusers := http.NewServeMux()

	apiusers.HandleFunc("POST /register", users.register)
	apiusers.HandleFunc("POST /login", auth.login)
	apiusers.HandleFunc("POST /refresh", auth.refresh)

	apiusers.Handle("POST /logout", withAuth(auth.logout))
	apiusers.Handle("POST /change-password", withAuth(auth.changePassword))
	apiusers.Handle("GET /me", withAuth(users.me))
	apiusers.Handle("PATCH /account", withAuth(users.updateAccount))
	apiusers.Handle("PATCH /avatar", withAuth(users.updateAvatar))
	apiusers.Handle("PATCH /cover-image", withAuth(users.updateCoverImage))

	root := http.NewServeMux()
	root.Handle("/api/users/", http.StripPrefix("/api/users", apiusers))

	return chain(root, mds...)
}

type authService interface {
	// Login user with username or email
	// Has to return apperrors.ErrUserNotFound if no user matches and
	// apperrors.ErrInvalidCredentials if the password is wrong
	Login(ctx context.Context, login string, password string) (models.TokenPair, models.User, error)

	// Rotate the token pair
	// Error kinds: apperrors.ErrTokenMissing, ErrTokenInvalid,
	// ErrRefreshReused, ErrRefreshConflict
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Clear the stored refresh token
	Logout(ctx context.Context, userID uuid.UUID) error

	// Has to return apperrors.ErrInvalidCredentials if old password is wrong
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword string, newPassword string) error
}

type userService interface {
	Register(ctx context.Context, arg user.RegisterParams) (models.User, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, fullName string, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar string) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, coverImage string) (models.User, error)
}

type mediaStore interface {
	Upload(ctx context.Context, body io.Reader, contentType string) (string, error)
}
