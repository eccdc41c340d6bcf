package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

const defaultErrorMessage = "An unexpected error occurred"

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Detail  string         `json:"detail"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached to the gin context.
// Server errors are logged with the full cause chain.
func ErrorHandler(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := ierr.HTTPStatusFromErr(err)
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
			)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, NewErrorResponse(err))
	}
}

// NewErrorResponse builds the response body for err
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Detail:  ierr.DisplayMessage(err, defaultErrorMessage),
		Details: getSafeDetails(err),
	}
}

func getSafeDetails(err error) map[string]any {
	details := make(map[string]any)

	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok {
				continue
			}
			var jsonDetails map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &jsonDetails); err == nil {
				for k, v := range jsonDetails {
					details[k] = v
				}
			}
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
