package v1

import (
	"net/http"

	"github.com/beautyops/beautyops/internal/api/dto"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/service"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	service service.UsageService
	logger  *logger.Logger
}

func NewUsageHandler(service service.UsageService, logger *logger.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		logger:  logger,
	}
}

// GetStats handles GET /api/usage/stats
func (h *UsageHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetStats(ctx, types.GetUserID(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckAccess handles GET /api/usage/access/:feature
func (h *UsageHandler) CheckAccess(c *gin.Context) {
	feature := types.FeatureType(c.Param("feature"))
	if err := feature.Validate(); err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	decision := h.service.CheckAccess(ctx, types.GetUserID(ctx), feature)

	c.JSON(http.StatusOK, dto.AccessResponse{
		Feature: decision.Feature,
		Result:  decision.Result,
		Allowed: decision.Permits(),
		Reason:  decision.Reason,
	})
}

// RecordUsage handles POST /api/usage/record
func (h *UsageHandler) RecordUsage(c *gin.Context) {
	var req dto.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	ctx := c.Request.Context()
	resp, err := h.service.RecordUsage(ctx, types.GetUserID(ctx), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
