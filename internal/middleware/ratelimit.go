package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/yourorg/busstopapi/internal/models"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Sliding-window limiter keyed by client IP. The window state lives
// in-process (the default limiter storage); swapping Storage for a shared
// backend is possible later without touching the query engine.

// RateLimiter builds the per-IP sliding-window limiter that fronts the
// /stops group. Budget and window come from configuration.
func RateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Detail: "Too many requests",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
	})
}
