package middleware

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware propagates X-Request-ID, generating one when absent
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// RequestLogger logs one line per request. Health checks are skipped.
func RequestLogger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "/health" || path == "/" {
			return
		}

		logger.Infow("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
			"user_id", types.GetUserID(c.Request.Context()),
		)
	}
}
