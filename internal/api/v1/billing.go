package v1

import (
	"net/http"
	"strconv"

	"github.com/beautyops/beautyops/internal/api/dto"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/service"
	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	service service.BillingService
	logger  *logger.Logger
}

func NewBillingHandler(service service.BillingService, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCheckoutSession handles POST /api/billing/create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreatePortalSession handles POST /api/billing/create-portal-session
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	var req dto.CreatePortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePortalSession(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubscription handles GET /api/billing/subscription/:user_id
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	resp, err := h.service.GetSubscription(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListInvoices handles GET /api/billing/invoices/:user_id?limit=N
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = c.Error(ierr.NewErrorf("invalid limit %q", raw).
				WithHint("limit must be a positive integer").
				Mark(ierr.ErrValidation))
			return
		}
		limit = parsed
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), c.Param("user_id"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
