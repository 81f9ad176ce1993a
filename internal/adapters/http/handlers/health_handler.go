package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck handles health check
// @Summary Health check
// @Description Liveness probe. Exempt from the network allow-list.
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /_health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
