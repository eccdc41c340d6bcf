package router

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/httpclient"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"endpoint unavailable", httpclient.NewError(http.StatusServiceUnavailable, nil), true},
		{"endpoint throttled", httpclient.NewError(http.StatusTooManyRequests, nil), true},
		{"endpoint rejects payload", httpclient.NewError(http.StatusBadRequest, []byte(`{"error":"bad"}`)), false},
		{"endpoint gone", httpclient.NewError(http.StatusGone, nil), false},
		{"wrapped http error", fmt.Errorf("deliver: %w", httpclient.NewError(http.StatusBadGateway, nil)), true},
		{"network timeout", fmt.Errorf("post: %w", timeoutErr{}), true},
		{"malformed payload", ierr.NewError("bad json").Mark(ierr.ErrValidation), false},
		{"unknown failure", context.Canceled, true},
	}

	log := logger.NewNopLogger()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(log, tt.err))
		})
	}
}
