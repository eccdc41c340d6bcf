package middleware

import (
	"time"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idle limiters are evicted after this long; a returning user starts with a full bucket
const limiterIdleTTL = 10 * time.Minute

// RateLimitMiddleware throttles each authenticated user with a token bucket.
// Requests without a user are keyed by client IP. Must run after AuthenticateMiddleware.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	every := rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	limiters := gocache.New(limiterIdleTTL, limiterIdleTTL)

	return func(c *gin.Context) {
		key := types.GetUserID(c.Request.Context())
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		var limiter *rate.Limiter
		if v, ok := limiters.Get(key); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(every, burst)
			// Add loses to a concurrent first request; take the stored one then
			if err := limiters.Add(key, limiter, gocache.DefaultExpiration); err != nil {
				if v, ok := limiters.Get(key); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.SetDefault(key, limiter)

		if !limiter.Allow() {
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please try again shortly").
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}
