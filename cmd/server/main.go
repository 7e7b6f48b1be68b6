package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yourorg/busstopapi/internal/cache"
	"github.com/yourorg/busstopapi/internal/config"
	appdb "github.com/yourorg/busstopapi/internal/db"
	"github.com/yourorg/busstopapi/internal/handlers"
	"github.com/yourorg/busstopapi/internal/routes"
	"github.com/yourorg/busstopapi/internal/stops"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.APIKey == "" {
		log.Println("⚠️  API_KEY is not set; every /stops request will be rejected")
	}

	// ============================================================================
	// SNAPSHOT
	// ============================================================================
	// The stops snapshot is refreshed out-of-band; a missing or unreadable
	// file at startup is fatal.
	db, err := appdb.Open(cfg.SnapshotPath)
	if err != nil {
		log.Fatalf("stops snapshot unavailable: %v", err)
	}
	defer db.Close()
	log.Printf("✅ stops snapshot loaded from %s", cfg.SnapshotPath)

	stopsCache := cache.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	defer stopsCache.Stop()

	svc := stops.NewService(db, stopsCache)

	// ============================================================================
	// HTTP
	// ============================================================================
	app := fiber.New(fiber.Config{AppName: config.AppName})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New())

	routes.Register(app,
		handlers.NewHealthHandler(config.AppName, cfg.Version),
		handlers.NewStopsHandler(svc),
		cfg,
	)

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("🛑 shutdown signal received, closing server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 %s listening on :%s", config.AppName, cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
