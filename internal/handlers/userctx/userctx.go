package userctx

import (
	"context"

	"github.com/akulikov/streamtube/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// New returns a context carrying the authenticated user snapshot
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext extracts the user snapshot set by the auth middleware
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}
