// Package config handles application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// AppName is reported by the health endpoint and used as the Fiber app name.
const AppName = "bus-stop-api"

// Config holds all application configuration.
type Config struct {
	Port            string
	APIKey          string
	SnapshotPath    string
	RateLimitMax    int
	RateLimitWindow time.Duration
	CacheTTL        time.Duration
	Version         string
}

// Load reads configuration from environment variables with sensible defaults.
// Call godotenv.Load first if a .env file should be honored.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		APIKey:          os.Getenv("API_KEY"),
		SnapshotPath:    getEnv("STOPS_DB_PATH", "data/stops.db"),
		RateLimitMax:    getIntEnv("RATE_LIMIT_MAX", 600),
		RateLimitWindow: getDurationEnv("RATE_LIMIT_WINDOW_SECONDS", 60),
		CacheTTL:        getDurationEnv("CACHE_TTL_SECONDS", 300),
		Version:         getEnv("APP_VERSION", "1.0.0"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
