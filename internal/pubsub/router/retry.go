package router

import (
	"errors"
	"net"
	"net/http"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/httpclient"
	"github.com/beautyops/beautyops/internal/logger"
)

// retryableStatuses are endpoint responses worth another delivery attempt
var retryableStatuses = map[int]struct{}{
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// shouldRetry reports whether a failed notification delivery goes back to the
// retry middleware. Any other endpoint rejection is final.
func shouldRetry(log *logger.Logger, err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		_, retry := retryableStatuses[httpErr.StatusCode]
		log.Debugw("notification endpoint rejected delivery",
			"status_code", httpErr.StatusCode,
			"retry", retry,
		)
		return retry
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debugw("notification delivery timed out", "error", err)
		return true
	}

	// a malformed notification fails the same way every time
	switch {
	case ierr.IsValidation(err), ierr.IsNotFound(err), ierr.IsPermissionDenied(err):
		return false
	}
	return true
}
