package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	// Live source settings
	SourcePollInterval time.Duration
	ReconnectBackoff   time.Duration

	// Report cache settings
	ReportCacheExpiry  time.Duration
	ReportCacheCleanup time.Duration

	AllowedOrigin string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./scrapdash.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SourcePollInterval: getEnvDuration("SOURCE_POLL_INTERVAL", 2*time.Second),
		ReconnectBackoff:   getEnvDuration("RECONNECT_BACKOFF", 5*time.Second),
		ReportCacheExpiry:  getEnvDuration("REPORT_CACHE_EXPIRY", 15*time.Minute),
		ReportCacheCleanup: getEnvDuration("REPORT_CACHE_CLEANUP", 30*time.Minute),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	log.Println("Application configuration loaded.")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid %s format '%s'. Using default %s. Error: %v", key, valueStr, fallback, err)
		return fallback
	}
	return value
}
