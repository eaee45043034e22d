package middleware

import (
	"context"
	"net/http"

	"github.com/akulikov/streamtube/internal/handlers"
	"github.com/akulikov/streamtube/internal/handlers/render"
	"github.com/akulikov/streamtube/internal/handlers/userctx"
	"github.com/akulikov/streamtube/internal/models"
)

type authenticator interface {
	// Resolve access token to a user snapshot
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// Auth verifies the access token (Authorization header or cookie) and
// puts the resolved user snapshot into the request context. Requests
// without a valid token never reach the wrapped handler.
func Auth(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access := handlers.AccessFromRequest(r)

			user, err := a.Authenticate(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
