package v1

import (
	"io"
	"net/http"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/service"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes bounds the body read before signature verification
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives payment provider webhooks
type WebhookHandler struct {
	billing service.BillingService
	logger  *logger.Logger
}

func NewWebhookHandler(billing service.BillingService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing: billing,
		logger:  logger,
	}
}

// HandleStripeWebhook handles POST /api/billing/webhook. The raw body is
// passed through untouched because the signature covers its exact bytes.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// one byte past the limit tells an oversize body apart from one that fits exactly
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid payload").
			Mark(ierr.ErrValidation))
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		_ = c.Error(ierr.NewError("webhook payload too large").
			WithHint("Payload too large").
			WithReportableDetails(map[string]any{"limit_bytes": maxWebhookBodyBytes}).
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billing.ProcessWebhook(c.Request.Context(), payload, c.GetHeader(types.HeaderStripeSignature))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
