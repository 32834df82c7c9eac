// Package config provides configuration management for the nesting worker.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jewisonj/nestworker/internal/nestingerrors"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	URL             string
	MaxConnections  int
	MinConnections  int
	MaxIdleTime     time.Duration
	MaxConnLifetime time.Duration
	Debug           bool
}

// StorageConfig holds object storage configuration: where source DXFs are
// downloaded from and where nested results are uploaded to.
type StorageConfig struct {
	SupabaseURL        string
	SupabaseServiceKey string
	Bucket             string
	LocalRoot          string // root directory of the local provider, the only object store the worker constructs
}

// WorkerConfig holds polling and scratch-space configuration.
type WorkerConfig struct {
	PollInterval time.Duration
	TempDir      string
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads the configuration from environment variables, applying the
// defaults the worker ships with out of the box.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConnections:  getEnvAsInt("DATABASE_MAX_CONNECTIONS", 20),
			MinConnections:  getEnvAsInt("DATABASE_MIN_CONNECTIONS", 5),
			MaxIdleTime:     getEnvAsDuration("DATABASE_MAX_IDLE_TIME", 10*time.Minute),
			MaxConnLifetime: getEnvAsDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour),
			Debug:           getEnvAsBool("DATABASE_DEBUG", false),
		},
		Storage: StorageConfig{
			SupabaseURL:        getEnv("SUPABASE_URL", ""),
			SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:             getEnv("STORAGE_BUCKET", "pdm-files"),
			LocalRoot:          getEnv("LOCAL_STORAGE_ROOT", "./data/storage"),
		},
		Worker: WorkerConfig{
			PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL", 5)) * time.Second,
			TempDir:      getEnv("TEMP_DIR", "/tmp/nest-work"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", nestingerrors.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("DATABASE_MIN_CONNECTIONS must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("DATABASE_MIN_CONNECTIONS cannot exceed DATABASE_MAX_CONNECTIONS")
	}

	if c.Storage.SupabaseURL != "" && c.Storage.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}

	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// Helper functions for environment variables.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
