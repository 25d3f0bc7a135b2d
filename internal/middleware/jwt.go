package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a2sh3r/walletd/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	IsAdminKey contextKey = "is_admin"
)

type principal struct {
	userID  int64
	isAdmin bool
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return token, nil
}

// parsePrincipal verifies an HS256 token carrying an expiry and reads the
// caller identity from its claims. user_id may be encoded as a number or a
// decimal string.
func parsePrincipal(tokenString, secretKey string) (principal, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return principal{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	var p principal
	switch v := claims["user_id"].(type) {
	case float64:
		p.userID = int64(v)
	case string:
		p.userID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return principal{}, fmt.Errorf("%w: user_id %q", apperrors.ErrInvalidToken, v)
		}
	default:
		return principal{}, fmt.Errorf("%w: user_id missing", apperrors.ErrInvalidToken)
	}
	if p.userID <= 0 {
		return principal{}, fmt.Errorf("%w: user_id %d", apperrors.ErrInvalidToken, p.userID)
	}

	p.isAdmin, _ = claims["is_admin"].(bool)
	return p, nil
}

func JWTMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			p, err := parsePrincipal(tokenString, secretKey)
			if err != nil {
				http.Error(w, apperrors.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, p.userID)
			ctx = context.WithValue(ctx, IsAdminKey, p.isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}

// RequireAdmin must run after JWTMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			http.Error(w, apperrors.ErrForbidden.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
