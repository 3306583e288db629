// Package api implements the JobTrackr REST API using chi.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/auth"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type userIDKey struct{}

// UserID returns the authenticated user id stored in ctx, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// AuthMiddleware returns middleware that requires "Authorization: Bearer <token>"
// and puts the caller's user id in the request context.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("Not authorized, no token"))
				return
			}
			userID, err := a.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
			case errors.Is(err, auth.ErrUnknownUser):
				writeJSON(w, http.StatusUnauthorized, errorBody("User not found"))
			case errors.Is(err, apperr.ErrUnauthorized):
				slog.DebugContext(r.Context(), "token rejected", slog.String("error", err.Error()))
				writeJSON(w, http.StatusUnauthorized, errorBody("Not authorized, invalid token"))
			default:
				slog.ErrorContext(r.Context(), "authenticate failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
			}
		})
	}
}
