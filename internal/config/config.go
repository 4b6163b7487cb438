package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/catalog"
	"github.com/MeKo-Tech/sheetscan/internal/ocr"
	"github.com/MeKo-Tech/sheetscan/internal/staging"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
			RateLimit:       2,
			RateBurst:       5,
		},
		Google: GoogleConfig{
			Location: "us",
		},
		Storage: StorageConfig{
			Mode:              string(staging.ModeInline),
			Prefix:            "uploads",
			CleanupTimeoutSec: 30,
		},
		Sheets: SheetsConfig{
			Range: "Sheet1!A:D",
		},
	}
}

// Validate validates the configuration and returns any errors.
// Credentials and resource identifiers are checked by RequireServices.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %g (must not be negative)", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("invalid rate burst: %d (must be positive when rate limiting is enabled)", c.Server.RateBurst)
	}

	if _, err := staging.ParseMode(c.Storage.Mode); err != nil {
		return err
	}
	if c.Storage.CleanupTimeoutSec <= 0 {
		return fmt.Errorf("invalid cleanup timeout: %d (must be positive)", c.Storage.CleanupTimeoutSec)
	}
	return nil
}

// RequireServices checks the settings needed to talk to Google APIs. The
// catalog command does not need them, so Validate leaves them out.
func (c *Config) RequireServices() error {
	return errors.Join(c.RequireOCR(), c.RequireSheets())
}

// RequireOCR checks the processor and, in staged mode, the bucket.
func (c *Config) RequireOCR() error {
	var errs []error
	if err := c.DocumentAI().Validate(); err != nil {
		errs = append(errs, err)
	}
	if mode, _ := staging.ParseMode(c.Storage.Mode); mode == staging.ModeStaged && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required in staged mode"))
	}
	return errors.Join(errs...)
}

// RequireSheets checks the target spreadsheet.
func (c *Config) RequireSheets() error {
	var errs []error
	if c.Sheets.SpreadsheetID == "" {
		errs = append(errs, errors.New("sheets.spreadsheet_id is required"))
	}
	if c.Sheets.Range == "" {
		errs = append(errs, errors.New("sheets.range is required"))
	}
	return errors.Join(errs...)
}

// DocumentAI returns the processor settings.
func (c *Config) DocumentAI() ocr.DocumentAIConfig {
	return ocr.DocumentAIConfig{
		ProjectID:   c.Google.ProjectID,
		Location:    c.Google.Location,
		ProcessorID: c.Google.ProcessorID,
	}
}

// ToStagingConfig converts the storage section.
func (c *Config) ToStagingConfig() (staging.Config, error) {
	mode, err := staging.ParseMode(c.Storage.Mode)
	if err != nil {
		return staging.Config{}, err
	}
	return staging.Config{
		Mode:           mode,
		KeyPrefix:      c.Storage.Prefix,
		CleanupTimeout: time.Duration(c.Storage.CleanupTimeoutSec) * time.Second,
	}, nil
}

// LoadCatalog builds the catalog from the configured file and inline items.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(c.Catalog.File, c.Catalog.Items)
}
