package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akosarev/authd/internal/handlers"
	"github.com/akosarev/authd/internal/handlers/render"
	"github.com/akosarev/authd/internal/models"
)

const bearerScheme = "Bearer "

type authService interface {
	GetUser(ctx context.Context, accessToken string) (models.User, error)
}

// AuthMiddleware resolves the bearer access token and puts the user
// into the request context
// Responds 401 with a generic message on any failure
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerScheme)
			if !ok || token == "" {
				render.ServiceError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := as.GetUser(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := handlers.NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
