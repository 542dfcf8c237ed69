package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	IdentityKey    contextKey = "identity"
	AccessTokenKey contextKey = "access_token"
	UserViewKey    contextKey = "user_view"
)

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		tokenString := parts[1]

		// Validates signature, expiry and revocation
		identity, err := m.authUsecase.GetSession(r.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrTokenRevoked):
				response.Unauthorized(w, "Token has been revoked")
			case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrUserNotFound):
				response.Unauthorized(w, "Invalid or expired token")
			default:
				response.InternalServerError(w, "Failed to validate token")
			}
			return
		}

		// Add identity to context
		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		ctx = context.WithValue(ctx, AccessTokenKey, tokenString)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext extracts the authenticated identity from context
func GetIdentityFromContext(ctx context.Context) (*entity.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*entity.Identity)
	return identity, ok && identity != nil
}

// GetUserIDFromContext extracts identity ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return identity.ID, true
}

// GetRoleFromContext extracts the role stored in the identity metadata
func GetRoleFromContext(ctx context.Context) (entity.Role, bool) {
	identity, ok := GetIdentityFromContext(ctx)
	if !ok {
		return entity.RoleNone, false
	}
	return identity.Role()
}

// GetAccessTokenFromContext extracts the raw bearer token from context
func GetAccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	return token, ok
}

// GetUserViewFromContext extracts the composite user view set by the route gate
func GetUserViewFromContext(ctx context.Context) (*entity.UserView, bool) {
	view, ok := ctx.Value(UserViewKey).(*entity.UserView)
	return view, ok && view != nil
}
