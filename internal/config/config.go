// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	DBConnStr     string
	Port          int
	APIToken      string
	EncryptionKey string          // hex-encoded 32-byte key; empty disables encryption
	DefaultFXRate decimal.Decimal // current LOCAL-per-USD rate
	LogLevel      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DBConnStr:     getEnv("DB_CONN_STR", ""),
		Port:          getEnvAsInt("PORT", 8080),
		APIToken:      getEnv("API_TOKEN", "dev-token"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	// If the explicit string is missing, build it from individual vars
	// (Docker friendly)
	if cfg.DBConnStr == "" {
		cfg.DBConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "patrimonio"),
		)
	}

	rate, err := decimal.NewFromString(getEnv("DEFAULT_FX_RATE", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_FX_RATE: %w", err)
	}
	cfg.DefaultFXRate = rate

	return cfg, nil
}

// getEnv reads an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt reads an integer environment variable with a fallback default
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
