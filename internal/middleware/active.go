package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/a2sh3r/walletd/internal/models"
	"go.uber.org/zap"
)

// UserLookup loads the stored account of an authenticated caller.
type UserLookup func(ctx context.Context, id int64) (*models.User, error)

// ActiveUser must run after JWTMiddleware. It rejects callers whose account
// was disabled or removed after the token was issued, and replaces the admin
// flag from the token with the stored one.
func ActiveUser(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				http.Error(w, apperrors.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			user, err := lookup(r.Context(), userID)
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				http.Error(w, apperrors.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			case err != nil:
				logger.Log.Error("failed to load caller", zap.Int64("user", userID), zap.Error(err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			case !user.IsActive:
				http.Error(w, apperrors.ErrUserInactive.Error(), http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), IsAdminKey, user.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
