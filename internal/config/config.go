package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/nikolayk812/rocketcart/internal/domain"
	"golang.org/x/text/currency"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	StockAPIURL     string
	StockAPITimeout time.Duration

	StorageBackend string
	StorageKey     string
	StorageDir     string
	DatabaseURL    string
	RedisAddr      string

	Currency    string
	StockPolicy string

	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		StockAPIURL:     getEnv("STOCK_API_URL", "http://localhost:3333"),
		StockAPITimeout: getEnvDuration("STOCK_API_TIMEOUT", 10*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		StorageKey:     getEnv("STORAGE_KEY", "@RocketShoes:cart"),
		StorageDir:     getEnv("STORAGE_DIR", "./data"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),

		Currency:    getEnv("CART_CURRENCY", "BRL"),
		StockPolicy: getEnv("STOCK_POLICY", "ceiling"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT[%d] is out of range", c.HTTPPort)
	}

	if _, err := url.ParseRequestURI(c.StockAPIURL); err != nil {
		return fmt.Errorf("STOCK_API_URL[%s] is not valid: %w", c.StockAPIURL, err)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY is empty")
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR is empty")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is empty")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND[%s] is not valid", c.StorageBackend)
	}

	if _, err := c.CurrencyUnit(); err != nil {
		return err
	}

	if _, err := domain.ParseStockPolicy(c.StockPolicy); err != nil {
		return err
	}

	return nil
}

func (c Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}

	return unit, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
