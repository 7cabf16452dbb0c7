package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
)

type HealthHandler struct {
	service healthService
}

func NewHealthHandler(service healthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthCheck handles GET /api/v1/health
//
// @Summary Service health
// @Description Ledger gauges and dependency status. Responds 503 when the database is unreachable.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResult
// @Failure 503 {object} dto.HealthResult
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	result := h.service.Health(c.Request.Context())

	status := http.StatusOK
	if result.Status == dto.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
