// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP
	Port string

	// Storage
	DataBackend  string
	SQLiteDBPath string

	// Messaging. An empty URL disables the sheet mirror entirely.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SyncScanInterval time.Duration
	SyncBatchSize    int

	// Conversation
	ResponseDelayMin time.Duration
	ResponseDelayMax time.Duration

	// HTTP hardening and caching
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		DataBackend:        getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath:       getEnv("SQLITE_DB_PATH", "data/mledger.db"),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "mledger"),
		AMQPQueue:          getEnv("AMQP_QUEUE", "statement-sync"),
		SyncScanInterval:   getEnvDuration("SYNC_SCAN_INTERVAL", 5*time.Minute),
		SyncBatchSize:      getEnvInt("SYNC_BATCH_SIZE", 10),
		ResponseDelayMin:   getEnvDuration("RESPONSE_DELAY_MIN", time.Second),
		ResponseDelayMax:   getEnvDuration("RESPONSE_DELAY_MAX", 2*time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ReportCacheSize:    getEnvInt("REPORT_CACHE_SIZE", 64),
		ReportCacheTTL:     getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
	}
}

// Validate collects every configuration problem instead of stopping at the
// first, so a bad deploy surfaces all of them at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number, got %q", c.Port))
	}

	switch c.DataBackend {
	case BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("DATA_BACKEND must be %q or %q, got %q",
			BackendSQLite, BackendMemory, c.DataBackend))
	}

	if c.DataBackend == BackendSQLite && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH must not be empty")
	}

	if c.AMQPURL != "" &&
		!strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
		errs = append(errs, fmt.Sprintf("AMQP_URL must start with amqp:// or amqps://, got %q", c.AMQPURL))
	}

	if c.SyncScanInterval < time.Second {
		errs = append(errs, fmt.Sprintf("SYNC_SCAN_INTERVAL must be at least 1s, got %s", c.SyncScanInterval))
	}
	if c.SyncBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("SYNC_BATCH_SIZE must be positive, got %d", c.SyncBatchSize))
	}

	if c.ResponseDelayMin < 0 {
		errs = append(errs, fmt.Sprintf("RESPONSE_DELAY_MIN must not be negative, got %s", c.ResponseDelayMin))
	}
	if c.ResponseDelayMax < c.ResponseDelayMin {
		errs = append(errs, fmt.Sprintf("RESPONSE_DELAY_MAX (%s) must not be below RESPONSE_DELAY_MIN (%s)",
			c.ResponseDelayMax, c.ResponseDelayMin))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute))
	}
	if c.ReportCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("REPORT_CACHE_SIZE must be positive, got %d", c.ReportCacheSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
