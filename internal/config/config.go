package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres store")

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	MetricsAddr string

	Store       string
	DatabaseURL string
	DBMaxConns  int32

	RequestTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		requestTimeout = 10 * time.Second
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil || maxConns <= 0 {
		maxConns = 25
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		Store:       getEnv("STORE", StorePostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  int32(maxConns),

		RequestTimeout: requestTimeout,
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q: want %s or %s", cfg.Store, StorePostgres, StoreMemory)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
