// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Extraction struct {
		Workers            int    `mapstructure:"workers" yaml:"workers"`
		PageTimeoutSeconds int    `mapstructure:"page_timeout_seconds" yaml:"page_timeout_seconds"`
		OCREnabled         bool   `mapstructure:"ocr_enabled" yaml:"ocr_enabled"`
		OCRLanguage        string `mapstructure:"ocr_language" yaml:"ocr_language"`
	} `mapstructure:"extraction" yaml:"extraction"`

	Cache struct {
		Enabled  bool `mapstructure:"enabled" yaml:"enabled"`
		TTLHours int  `mapstructure:"ttl_hours" yaml:"ttl_hours"`
	} `mapstructure:"cache" yaml:"cache"`

	Banks struct {
		// OverridesFile points at a YAML file adding or replacing bank
		// profiles; empty means builtins only.
		OverridesFile string `mapstructure:"overrides_file" yaml:"overrides_file"`
	} `mapstructure:"banks" yaml:"banks"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.extrato-csv")
	v.AddConfigPath(".extrato-csv")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("EXTRATO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")

	// Extraction defaults
	v.SetDefault("extraction.workers", 4)
	v.SetDefault("extraction.page_timeout_seconds", 60)
	v.SetDefault("extraction.ocr_enabled", false)
	v.SetDefault("extraction.ocr_language", "por")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_hours", 24)

	// Bank profile defaults
	v.SetDefault("banks.overrides_file", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	// Validate extraction bounds
	if config.Extraction.Workers < 1 || config.Extraction.Workers > 64 {
		return fmt.Errorf("extraction.workers must be between 1 and 64, got: %d", config.Extraction.Workers)
	}
	if config.Extraction.PageTimeoutSeconds < 1 || config.Extraction.PageTimeoutSeconds > 600 {
		return fmt.Errorf("extraction.page_timeout_seconds must be between 1 and 600, got: %d", config.Extraction.PageTimeoutSeconds)
	}
	if config.Extraction.OCREnabled && config.Extraction.OCRLanguage == "" {
		return fmt.Errorf("extraction.ocr_language required when OCR is enabled")
	}

	// Validate cache TTL
	if config.Cache.Enabled && config.Cache.TTLHours < 1 {
		return fmt.Errorf("cache.ttl_hours must be at least 1, got: %d", config.Cache.TTLHours)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
