package middleware

import (
	"net/http"
	"testing"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RateLimitConfig
		allowed int
	}{
		{"disabled", config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1, Burst: 1}, 5},
		{"zero rate disables", config.RateLimitConfig{Enabled: true}, 5},
		{"burst of three", config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 3}, 3},
		{"missing burst allows one", config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(echoUser, RateLimitMiddleware(tt.cfg))

			ok := 0
			var last int
			for i := 0; i < 5; i++ {
				w := do(r, "")
				last = w.Code
				if w.Code == http.StatusOK {
					ok++
				}
			}
			assert.Equal(t, tt.allowed, ok)
			if tt.allowed < 5 {
				assert.Equal(t, http.StatusTooManyRequests, last)
			}
		})
	}
}
