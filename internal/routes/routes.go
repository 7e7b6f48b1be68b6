package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/busstopapi/internal/config"
	"github.com/yourorg/busstopapi/internal/handlers"
	"github.com/yourorg/busstopapi/internal/middleware"
)

// Register wires every endpoint onto the app. The root status endpoint is
// open; the whole /stops group sits behind the sliding-window rate limiter
// and the api-key gate, so no stop query runs for a rejected request.
func Register(app *fiber.App, health *handlers.HealthHandler, stopsHandler *handlers.StopsHandler, cfg *config.Config) {
	app.Get("/", health.Status)

	stopsGroup := app.Group("/stops",
		middleware.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		middleware.APIKeyAuth(cfg.APIKey),
	)

	stopsGroup.Get("/", stopsHandler.ListStops)
	stopsGroup.Get("/code/:stop_code", stopsHandler.GetStopByCode)
	stopsGroup.Get("/nearby/by-name", stopsHandler.NearbyByName)
	stopsGroup.Get("/nearby/by-coords", stopsHandler.NearbyByCoords)
}
