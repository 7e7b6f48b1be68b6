package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/busstopapi/internal/models"
)

// HealthHandler serves the root status endpoint. It is registered without
// auth or rate limiting so probes always get through.
type HealthHandler struct {
	name      string
	version   string
	startedAt time.Time
}

// NewHealthHandler records the process start time for uptime reporting.
func NewHealthHandler(name, version string) *HealthHandler {
	return &HealthHandler{
		name:      name,
		version:   version,
		startedAt: time.Now(),
	}
}

// Status returns the API status, name, version, and uptime in seconds.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Msg:     "API status 🚀",
		Name:    h.name,
		Version: h.version,
		Uptime:  int64(time.Since(h.startedAt).Seconds()),
	})
}
