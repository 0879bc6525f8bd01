package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/utils"
	"gorm.io/gorm"
)

// HealthHandler handles the health check route
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
}

// Health handles GET /api/health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return utils.SuccessResponse(c, result, status)
}
