package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment. A .env
// file in the working directory is loaded first when present, real
// environment variables win.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret string

	SendGridAPIKey    string
	SendGridFromEmail string
	FirebaseCredsFile string

	AppName     string
	AppURL      string
	LogLevel    string
	Environment string
}

// Load reads configuration from the environment. DATABASE_URL and JWT_SECRET
// are required; everything else has a sensible default or disables the
// feature it configures when empty.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@splitledger.app"),
		FirebaseCredsFile: os.Getenv("FIREBASE_CREDENTIALS"),
		AppName:           getEnv("APP_NAME", "SplitLedger"),
		AppURL:            getEnv("APP_URL", "http://localhost:8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Environment:       getEnv("ENVIRONMENT", "development"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
