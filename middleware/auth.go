package middleware

import (
	"context"
	"net/http"

	"taskboard/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// Authenticator resolves an Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireUser authenticates the bearer token on every request and stores the
// resolved user in the request context.
func RequireUser(auth Authenticator, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
