package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"goanalytics/internal/errors"
)

// Catalog sources accepted by CATALOG_SOURCE
const (
	CatalogRemote   = "remote"
	CatalogExcel    = "excel"
	CatalogPostgres = "postgres"
	CatalogBuiltin  = "builtin"
)

// MaxHistoryCapacity bounds HISTORY_CAPACITY; the session log never holds more
const MaxHistoryCapacity = 5

// Config represents the complete application configuration
type Config struct {
	Analytics     AnalyticsConfig
	Catalog       CatalogConfig
	Database      DatabaseConfig
	Server        ServerConfig
	Session       SessionConfig
	Notifications NotificationConfig
	LogLevel      string
}

// AnalyticsConfig holds the remote analysis service settings
type AnalyticsConfig struct {
	BaseURL    string
	Token      string
	JobTimeout time.Duration
}

// CatalogConfig selects where datasets and methods are read from
type CatalogConfig struct {
	Source      string
	ExcelFile   string
	Concurrency int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SessionConfig holds orchestrator settings
type SessionConfig struct {
	HistoryCapacity int
	SaveAnalysis    bool
	Tags            []string
}

// NotificationConfig controls the desktop notification gate
type NotificationConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analytics: loadAnalyticsConfig(),
		Catalog:   loadCatalogConfig(),
		Database:  DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:    loadServerConfig(),
		Session:   loadSessionConfig(),
		Notifications: NotificationConfig{
			Enabled: getEnvBoolOrDefault("NOTIFICATIONS_ENABLED", true),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		BaseURL:    strings.TrimRight(getEnvOrDefault("ANALYTICS_API_URL", "http://localhost:8000"), "/"),
		Token:      os.Getenv("ANALYTICS_API_TOKEN"),
		JobTimeout: getEnvDurationOrDefault("JOB_TIMEOUT", 0),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Source:      strings.ToLower(getEnvOrDefault("CATALOG_SOURCE", CatalogRemote)),
		ExcelFile:   getEnvOrDefault("EXCEL_FILE", ""),
		Concurrency: getEnvIntOrDefault("CATALOG_CONCURRENCY", 4),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		HistoryCapacity: getEnvIntOrDefault("HISTORY_CAPACITY", MaxHistoryCapacity),
		SaveAnalysis:    getEnvBoolOrDefault("SAVE_ANALYSIS", true),
		Tags:            getEnvListOrDefault("ANALYSIS_TAGS", nil),
	}
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.Analytics.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("ANALYTICS_API_URL must be an absolute URL")
	}
	if config.Analytics.JobTimeout < 0 {
		return errors.ConfigInvalid("JOB_TIMEOUT must not be negative")
	}

	switch config.Catalog.Source {
	case CatalogRemote, CatalogBuiltin:
	case CatalogExcel:
		if config.Catalog.ExcelFile == "" {
			return errors.ConfigInvalid("EXCEL_FILE is required when CATALOG_SOURCE=excel")
		}
	case CatalogPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
	default:
		return errors.ConfigInvalid("unknown CATALOG_SOURCE " + strconv.Quote(config.Catalog.Source))
	}

	if config.Catalog.Concurrency < 1 {
		config.Catalog.Concurrency = 1
	}
	if config.Session.HistoryCapacity < 1 || config.Session.HistoryCapacity > MaxHistoryCapacity {
		return errors.ConfigInvalid("HISTORY_CAPACITY must be between 1 and " + strconv.Itoa(MaxHistoryCapacity))
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

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
