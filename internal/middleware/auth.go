package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mymd/clinic-backend/internal/auth"
	"github.com/mymd/clinic-backend/internal/model"
	"github.com/mymd/clinic-backend/internal/repo"
)

type contextKey string

const userKey contextKey = "user"

// Authorize validates the bearer access token, loads the user and attaches it
// to the request context. Deleted users fail here even with a valid token.
func Authorize(signer *auth.Signer, users repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				respondUnauthorized(w, "missing or malformed authorization header")
				return
			}

			claims, err := signer.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				respondUnauthorized(w, "user not found")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the user attached to the request context by Authorize.
func GetUser(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": message})
}
