package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"mlstudio/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Trainer  TrainerConfig
	Database DatabaseConfig
	Studio   StudioConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port             string
	GinMode          string
	MaxUploadBytes   int64
	AllowPrivateURLs bool // lets /upload-url fetch from loopback and private networks
}

// Trainer backends
const (
	BackendSimulated = "simulated"
	BackendHTTP      = "http"
)

// TrainerConfig selects and configures the Training Service
type TrainerConfig struct {
	Backend            string
	URL                string
	Timeout            time.Duration
	SimLatency         time.Duration
	CompareConcurrency int
}

// DatabaseConfig holds the optional leaderboard database connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether runs persist in PostgreSQL
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// StudioConfig holds data layer limits and display defaults
type StudioConfig struct {
	MaxHistory         int
	PreviewRows        int
	HistogramBins      int
	HistogramPrecision int
	FrequencyTopN      int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Trainer:  loadTrainerConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Studio:   loadStudioConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:             getEnvOrDefault("PORT", "8000"),
		GinMode:          getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes:   int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 32<<20)),
		AllowPrivateURLs: getEnvBoolOrDefault("ALLOW_PRIVATE_URLS", false),
	}
}

func loadTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Backend:            strings.ToLower(getEnvOrDefault("TRAINER_BACKEND", BackendSimulated)),
		URL:                getEnvOrDefault("TRAINER_URL", ""),
		Timeout:            getEnvDurationOrDefault("TRAINER_TIMEOUT", 60*time.Second),
		SimLatency:         getEnvDurationOrDefault("TRAINER_SIM_LATENCY", 0),
		CompareConcurrency: getEnvIntOrDefault("COMPARE_CONCURRENCY", 3),
	}
}

func loadStudioConfig() StudioConfig {
	return StudioConfig{
		MaxHistory:         getEnvIntOrDefault("MAX_HISTORY", 50),
		PreviewRows:        getEnvIntOrDefault("PREVIEW_ROWS", 100),
		HistogramBins:      getEnvIntOrDefault("HISTOGRAM_BINS", 10),
		HistogramPrecision: getEnvIntOrDefault("HISTOGRAM_PRECISION", 1),
		FrequencyTopN:      getEnvIntOrDefault("FREQUENCY_TOP_N", 10),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be numeric, got %q", config.Server.Port))
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}

	switch config.Trainer.Backend {
	case BackendSimulated:
	case BackendHTTP:
		if config.Trainer.URL == "" {
			return errors.ConfigInvalid("TRAINER_URL is required when TRAINER_BACKEND=http")
		}
		if u, err := url.Parse(config.Trainer.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return errors.ConfigInvalid(fmt.Sprintf("TRAINER_URL is not an absolute URL: %q", config.Trainer.URL))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown TRAINER_BACKEND %q", config.Trainer.Backend))
	}
	if config.Trainer.Timeout <= 0 {
		return errors.ConfigInvalid("TRAINER_TIMEOUT must be positive")
	}
	if config.Trainer.CompareConcurrency < 1 {
		return errors.ConfigInvalid("COMPARE_CONCURRENCY must be at least 1")
	}

	if config.Studio.MaxHistory < 0 {
		return errors.ConfigInvalid("MAX_HISTORY must not be negative")
	}
	if config.Studio.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must not be negative")
	}
	if config.Studio.HistogramBins < 1 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be at least 1")
	}
	if config.Studio.HistogramPrecision < 0 {
		return errors.ConfigInvalid("HISTOGRAM_PRECISION must not be negative")
	}
	if config.Studio.FrequencyTopN < 1 {
		return errors.ConfigInvalid("FREQUENCY_TOP_N must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
