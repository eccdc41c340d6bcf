package middleware

import (
	"strings"

	"github.com/beautyops/beautyops/internal/auth"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// AuthenticateMiddleware requires a valid bearer token in the Authorization
// header and sets the user id and email in the request context
func AuthenticateMiddleware(provider auth.Provider, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, provider)
		if err != nil {
			logger.Debugw("rejected request", "path", c.FullPath(), "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthenticateMiddleware sets the user when a valid token is present
// and lets every request through
func OptionalAuthenticateMiddleware(provider auth.Provider, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(types.HeaderAuthorization) == "" {
			c.Next()
			return
		}

		claims, err := authenticate(c, provider)
		if err != nil {
			logger.Debugw("ignoring invalid optional credentials", "error", err)
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func authenticate(c *gin.Context, provider auth.Provider) (*auth.Claims, error) {
	authHeader := c.GetHeader(types.HeaderAuthorization)
	if authHeader == "" {
		return nil, ierr.NewError("missing authorization header").
			WithHint("Missing authorization header").
			Mark(ierr.ErrUnauthorized)
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ierr.NewError("malformed authorization header").
			WithHint("Invalid authorization header format").
			Mark(ierr.ErrUnauthorized)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	claims, err := provider.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	if claims == nil || claims.UserID == "" {
		return nil, ierr.NewError("token has no subject").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthorized)
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	ctx := c.Request.Context()
	ctx = types.SetUserID(ctx, claims.UserID)
	if claims.Email != "" {
		ctx = types.SetUserEmail(ctx, claims.Email)
	}
	c.Request = c.Request.WithContext(ctx)
}
