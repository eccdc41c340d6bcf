package middleware

import (
	"net/http"
	"strings"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origin, or any origin when
// no frontend URL is set
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	origin := strings.TrimRight(cfg.Billing.FrontendURL, "/")
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		h.Set("Access-Control-Max-Age", "86400")
		if origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
