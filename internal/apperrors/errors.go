package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid or expired")

	// Refresh token is well signed but doesn't match the one stored for the user.
	// Means it was rotated out already: replayed by the client or stolen.
	ErrRefreshReused = errors.New("refresh token already used")

	// Lost the rotation race to a concurrent refresh presenting the same token
	ErrRefreshConflict = errors.New("concurrent refresh conflict")
)
