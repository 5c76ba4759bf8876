// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for the databases (always absolute)
	Port              int
	DevMode           bool
	LogLevel          string
	ReportingCurrency string // Currency all portfolio totals are expressed in
	BenchmarkSymbol   string // Benchmark for the performance simulator

	// Cache TTLs. Quotes and FX move constantly; fundamentals and history
	// are session-scoped since they change far less frequently.
	QuoteTTL        time.Duration
	FxTTL           time.Duration
	FundamentalsTTL time.Duration
	HistoryTTL      time.Duration

	ProviderTimeout time.Duration // Request timeout at the data provider boundary

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup settings. Backups are disabled
// unless Endpoint, AccessKey and SecretKey are all set.
type BackupConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Retention int // number of backups to keep
}

// Enabled reports whether backup credentials are fully configured.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Endpoint != "" && b.AccessKey != "" && b.SecretKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKDASH_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ReportingCurrency: getEnv("REPORTING_CURRENCY", "SGD"),
		BenchmarkSymbol:   getEnv("BENCHMARK_SYMBOL", "^GSPC"),
		QuoteTTL:          getEnvAsDuration("QUOTE_TTL", 5*time.Minute),
		FxTTL:             getEnvAsDuration("FX_TTL", 5*time.Minute),
		FundamentalsTTL:   getEnvAsDuration("FUNDAMENTALS_TTL", 12*time.Hour),
		HistoryTTL:        getEnvAsDuration("HISTORY_TTL", 24*time.Hour),
		ProviderTimeout:   getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
		Backup: &BackupConfig{
			Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:    getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:    getEnv("BACKUP_S3_BUCKET", "stockdash-backups"),
			AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
			Retention: getEnvAsInt("BACKUP_RETENTION", 7),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.QuoteTTL <= 0 || c.FxTTL <= 0 || c.FundamentalsTTL <= 0 || c.HistoryTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
