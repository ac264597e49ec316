package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration. Secrets have no fallback values:
// a missing secret is a startup failure, never a silent default.
type Config struct {
	Port        string
	ServiceName string

	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string

	RedisAddr string

	OTLPEndpoint string

	JWTSecret string
	JWTTTL    time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "skinsify-api"),

		DatabaseUser:     getEnv("DATABASE_USER", "root"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "pass"),
		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseName:     getEnv("DATABASE_NAME", "skinsify_db"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),

		JWTTTL: 7 * 24 * time.Hour,

		RazorpayBaseURL: getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
	}

	var err error
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.RazorpayKeyID, err = requireEnv("RAZORPAY_KEY_ID"); err != nil {
		return nil, err
	}
	if cfg.RazorpayKeySecret, err = requireEnv("RAZORPAY_KEY_SECRET"); err != nil {
		return nil, err
	}
	if cfg.CloudinaryCloudName, err = requireEnv("CLOUDINARY_CLOUD_NAME"); err != nil {
		return nil, err
	}
	if cfg.CloudinaryAPIKey, err = requireEnv("CLOUDINARY_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.CloudinaryAPISecret, err = requireEnv("CLOUDINARY_API_SECRET"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseDSN builds the Postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}
