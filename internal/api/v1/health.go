package v1

import (
	"net/http"

	"github.com/beautyops/beautyops/internal/api/dto"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	logger *logger.Logger
}

func NewHealthHandler(logger *logger.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Welcome to BeautyOps AI API"})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy"})
}
