package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/busstopapi/internal/models"
)

// APIKeyAuth rejects any request whose x-api-key header does not match the
// configured secret. It runs ahead of every /stops handler, so rejected
// requests never reach the query engine or the snapshot.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("x-api-key")
		if key == "" || key != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Detail: "Invalid or missing API Key.",
			})
		}
		return c.Next()
	}
}
