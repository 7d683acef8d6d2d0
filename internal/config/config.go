// Package config provides configuration management for StockVision.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/stockvision/stockvision/internal/sources"
)

// Config holds all application configuration.
type Config struct {
	// Cache settings
	CacheTTL time.Duration

	// MongoDB settings (empty URI disables persistence; the cache runs
	// memory-only)
	MongoURI string
	MongoDB  string

	// Analysis settings
	SourceTimeout  time.Duration
	AnalyzeTimeout time.Duration

	// Discovery settings
	DiscoveryWorkers int

	// Supply sources with per-source env overrides applied
	Sources []sources.SourceConfig

	// Server settings
	HTTPAddr    string
	HTTPTimeout time.Duration
	Debug       bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		CacheTTL: getEnvDuration("CACHE_TTL", 24*time.Hour),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "stockvision"),

		SourceTimeout:  getEnvDuration("SOURCE_TIMEOUT", sources.DefaultTimeout),
		AnalyzeTimeout: getEnvDuration("ANALYZE_TIMEOUT", 45*time.Second),

		DiscoveryWorkers: getEnvInt("DISCOVERY_WORKERS", 5),

		Sources: loadSources(),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 2*time.Minute),
		Debug:       getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// loadSources applies per-source env overrides to the built-in catalog
// set, e.g. SOURCE_ADOBE_STOCK_ENABLED=false or SOURCE_PEXELS_WEIGHT=0.2.
func loadSources() []sources.SourceConfig {
	configs := sources.DefaultSources()
	for i, src := range configs {
		prefix := "SOURCE_" + strings.ToUpper(src.ID)
		configs[i].Enabled = getEnvBool(prefix+"_ENABLED", src.Enabled)
		configs[i].Weight = getEnvFloat(prefix+"_WEIGHT", src.Weight)
	}
	return configs
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	enabled := 0
	for _, src := range c.Sources {
		if src.Enabled {
			enabled++
		}
		if src.Weight < 0 || src.Weight > 1 {
			return fmt.Errorf("source %s weight %v out of range [0,1]", src.ID, src.Weight)
		}
	}
	if enabled == 0 {
		log.Warn().Msg("No supply sources enabled, analyses will be demand-only")
	}
	if c.MongoURI == "" {
		log.Debug().Msg("MONGO_URI not set, cache will be memory-only")
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
