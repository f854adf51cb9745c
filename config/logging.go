package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kilianp07/gridpulse/infra/logger"
)

// LoggingConfig selects the log level, output format and optional rotating
// log file. LOG_LEVEL and APP_ENV, when already set in the environment, take
// precedence.
type LoggingConfig struct {
	Level string `json:"level"`
	// Format is "json" or "console".
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 50
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 14
	}
}

// Validate checks the level and format.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("unknown level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// Apply exports the settings to the variables read by infra/logger and, when
// File is set, redirects output to it. The returned func closes the file.
func (c LoggingConfig) Apply() (func() error, error) {
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", strings.ToLower(c.Level))
	}
	if os.Getenv("APP_ENV") == "" && c.Format == "console" {
		_ = os.Setenv("APP_ENV", "dev")
	}
	if c.File == "" {
		return func() error { return nil }, nil
	}
	closeFn, err := logger.SetFileOutput(logger.FileConfig{
		Path:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("log file %s: %w", c.File, err)
	}
	return closeFn, nil
}
