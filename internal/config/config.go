package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Gateway GatewayConfig
	MinIO   MinIOConfig
	Rental  RentalConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	PublicURL   string // base URL the payment gateway calls back to
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// GatewayConfig configures the EDIPay payment gateway adapter
type GatewayConfig struct {
	BaseURL string // payment service base URL
	Secret  string // shared secret for HMAC-SHA256 callback signatures
	Sender  string // UNB sender identifier
	Timeout int    // request timeout in seconds
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RentalConfig carries the ledger's business constants
type RentalConfig struct {
	PeriodDays         int // offset from borrow date to return_by date
	UpcomingWindowDays int // "due soon" notification window
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BiblioConnect API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			PublicURL:   getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:5001"),
			Secret:  getEnv("PAYMENT_SERVICE_SECRET", ""),
			Sender:  getEnv("PAYMENT_SENDER_ID", "BiblioConnectAPI"),
			Timeout: getEnvInt("PAYMENT_TIMEOUT_SECONDS", 10),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "covers"),
			UseSSL:    false,
		},
		Rental: RentalConfig{
			PeriodDays:         getEnvInt("RENTAL_PERIOD_DAYS", 30),
			UpcomingWindowDays: getEnvInt("RENTAL_UPCOMING_WINDOW_DAYS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for obviously broken values
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Gateway.Secret == "" {
			return fmt.Errorf("PAYMENT_SERVICE_SECRET must be set in production")
		}
	}

	if c.Rental.PeriodDays <= 0 {
		return fmt.Errorf("RENTAL_PERIOD_DAYS must be positive, got %d", c.Rental.PeriodDays)
	}
	if c.Rental.UpcomingWindowDays < 0 {
		return fmt.Errorf("RENTAL_UPCOMING_WINDOW_DAYS must not be negative")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
