package middleware

import (
	"time"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware returns a middleware that captures panics and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryUserMiddleware tags the request's Sentry scope with the authenticated
// user and request id. It runs after AuthenticateMiddleware.
func SentryUserMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		ctx := c.Request.Context()
		hub.Scope().SetUser(sentry.User{
			ID:    types.GetUserID(ctx),
			Email: types.GetUserEmail(ctx),
		})
		hub.Scope().SetTag("request_id", types.GetRequestID(ctx))
	}
	c.Next()
}
