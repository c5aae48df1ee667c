package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Redis       RedisConfig
	Marketplace MarketplaceConfig
	Checkout    CheckoutConfig
	Auth        AuthConfig
	// PROMETHEUS_ENABLED: expose GET /metrics
	PrometheusEnabled bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds sessions, location sequence numbers and the placing gate. Empty Addr keeps them in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MarketplaceConfig is used to call the marketplace API (shipping provider proxy, coupons, payments, orders)
type MarketplaceConfig struct {
	BaseURL string // MARKETPLACE_API_URL, e.g. https://api.otoor.sa/api
	Timeout time.Duration
}

type CheckoutConfig struct {
	Currency        string
	SessionTTL      time.Duration
	PendingOrderTTL time.Duration
	PlacingLockTTL  time.Duration
}

type AuthConfig struct {
	// JWT_SECRET verifies marketplace session tokens; empty means tokens are forwarded unverified
	JWTSecret string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "checkout"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Marketplace: MarketplaceConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("MARKETPLACE_API_URL", "")),
		},
		Checkout: CheckoutConfig{
			Currency: strings.ToUpper(strings.TrimSpace(getEnvOrViper("CHECKOUT_CURRENCY", "SAR"))),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(getEnvOrViper("JWT_SECRET", "")),
		},
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"MARKETPLACE_TIMEOUT", "30s", &cfg.Marketplace.Timeout},
		{"SESSION_TTL", "2h", &cfg.Checkout.SessionTTL},
		{"PENDING_ORDER_TTL", "30m", &cfg.Checkout.PendingOrderTTL},
		{"PLACING_LOCK_TTL", "45s", &cfg.Checkout.PlacingLockTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnvOrViper(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}

	cfg.PrometheusEnabled, err = strconv.ParseBool(getEnvOrViper("PROMETHEUS_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("PROMETHEUS_ENABLED: %w", err)
	}

	// Validate required fields
	if cfg.Marketplace.BaseURL == "" {
		return nil, fmt.Errorf("MARKETPLACE_API_URL is required")
	}
	if cfg.Environment == "production" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
