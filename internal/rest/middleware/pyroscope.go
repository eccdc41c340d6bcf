package middleware

import (
	"context"

	"github.com/beautyops/beautyops/internal/pyroscope"
	"github.com/gin-gonic/gin"
)

// PyroscopeMiddleware labels profiles with the matched route. Path
// parameters are left out because they carry user ids.
func PyroscopeMiddleware(svc *pyroscope.Service) gin.HandlerFunc {
	if !svc.IsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		svc.TagWrapper(c.Request.Context(), map[string]string{
			"method": c.Request.Method,
			"route":  route,
		}, func(context.Context) {
			c.Next()
		})
	}
}
