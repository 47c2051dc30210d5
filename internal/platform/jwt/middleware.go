package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	"shop_backend/internal/feature/auth/domain/entity"
	"shop_backend/internal/feature/auth/usecase"
)

const (
	// ContextUserID holds the authenticated user's id as a string.
	ContextUserID = "userID"
	// ContextUser holds the authenticated *entity.User.
	ContextUser = "currentUser"
)

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// IdentityResolver maps a verified token to a live user.
// It returns usecase.ErrUserNotFound when the identity is not live.
type IdentityResolver interface {
	Resolve(ctx context.Context, token, userID string) (*entity.User, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
// Missing or invalid tokens and unknown identities are rejected with 403;
// store failures with 500.
func AuthRequired(verifier TokenVerifier, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			slog.Warn("missing bearer token", "remote_addr", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			slog.Warn("invalid token", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "invalid token"})
			return
		}

		// 3. Resolve the identity
		user, err := resolver.Resolve(c.Request.Context(), tokenStr, claims.UserID())
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				slog.Warn("token does not resolve to a live user", "user_id", claims.UserID(), "remote_addr", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: api.MsgForbidden})
				return
			}
			slog.Error("identity lookup failed", "error", err, "user_id", claims.UserID())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
			return
		}

		// 4. Attach identity and pass control to the next handler
		SetCurrentUser(c, user)
		c.Next()
	}
}

// SetCurrentUser attaches u to the request context.
func SetCurrentUser(c *gin.Context, u *entity.User) {
	c.Set(ContextUser, u)
	c.Set(ContextUserID, u.ID)
}

// CurrentUser returns the user attached by AuthRequired.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
