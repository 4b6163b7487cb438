package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newTestLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+".yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestNewLoader tests loader creation.
func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.GetViper() != viper.GetViper() {
		t.Error("NewLoader() should use the global viper instance")
	}
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.CleanupTimeoutSec != 30 {
		t.Errorf("Expected default cleanup timeout 30, got %d", cfg.Storage.CleanupTimeoutSec)
	}
}

// TestLoadWithValidYAMLFile tests loading every section from a YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
log_level: debug
server:
  host: 0.0.0.0
  port: 9090
  rate_limit: 0.5
  rate_burst: 2
google:
  project_id: demand-project
  location: eu
  processor_id: f00
storage:
  mode: staged
  bucket: demand-uploads
  prefix: sheets
sheets:
  spreadsheet_id: sheet-123
  range: Demand!A:D
catalog:
  items:
    - Sugar
    - Rice
`)

	cfg, err := newTestLoader().LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}
	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("Unexpected server settings: %+v", cfg.Server)
	}
	if cfg.Server.RateLimit != 0.5 || cfg.Server.RateBurst != 2 {
		t.Errorf("Unexpected rate limit settings: %+v", cfg.Server)
	}
	if cfg.Google.ProjectID != "demand-project" || cfg.Google.Location != "eu" || cfg.Google.ProcessorID != "f00" {
		t.Errorf("Unexpected google settings: %+v", cfg.Google)
	}
	if cfg.Storage.Mode != "staged" || cfg.Storage.Bucket != "demand-uploads" || cfg.Storage.Prefix != "sheets" {
		t.Errorf("Unexpected storage settings: %+v", cfg.Storage)
	}
	if cfg.Storage.CleanupTimeoutSec != 30 {
		t.Errorf("Unset keys should keep defaults, got cleanup timeout %d", cfg.Storage.CleanupTimeoutSec)
	}
	if cfg.Sheets.SpreadsheetID != "sheet-123" || cfg.Sheets.Range != "Demand!A:D" {
		t.Errorf("Unexpected sheets settings: %+v", cfg.Sheets)
	}
	if len(cfg.Catalog.Items) != 2 || cfg.Catalog.Items[1] != "Rice" {
		t.Errorf("Unexpected catalog items: %v", cfg.Catalog.Items)
	}
	if err := cfg.RequireServices(); err != nil {
		t.Errorf("RequireServices() unexpected error: %v", err)
	}
}

// TestLoadFromSearchPath tests that sheetscan.yaml in the working directory is found.
func TestLoadFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log_level: warn\n")
	t.Chdir(dir)

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.LogLevel)
	}
	if !strings.HasSuffix(loader.GetConfigFileUsed(), ConfigFileName+".yaml") {
		t.Errorf("Unexpected config file used: %s", loader.GetConfigFileUsed())
	}
}

// TestLoadWithInvalidYAMLFile tests loading from an invalid YAML file.
func TestLoadWithInvalidYAMLFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "server:\n  port: [unterminated\n")

	if _, err := newTestLoader().LoadWithFile(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

// TestLoadWithNonExistentFile tests loading from a missing explicit file.
func TestLoadWithNonExistentFile(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing file error, got %v", err)
	}
}

// TestLoadWithValidationFailure tests that invalid values are rejected.
func TestLoadWithValidationFailure(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "storage:\n  mode: ftp\n")

	_, err := newTestLoader().LoadWithFile(path)
	if err == nil || !strings.Contains(err.Error(), "configuration validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}

	cfg, err := newTestLoader().LoadWithFileWithoutValidation(path)
	if err != nil {
		t.Fatalf("LoadWithFileWithoutValidation() error: %v", err)
	}
	if cfg.Storage.Mode != "ftp" {
		t.Errorf("Expected raw mode 'ftp', got %s", cfg.Storage.Mode)
	}
}

// TestEnvironmentVariableOverride tests that env vars win over the file.
func TestEnvironmentVariableOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log_level: warn\nserver:\n  port: 9000\n")

	t.Setenv("SHEETSCAN_LOG_LEVEL", "debug")
	t.Setenv("SHEETSCAN_SERVER_PORT", "9999")
	t.Setenv("SHEETSCAN_STORAGE_MODE", "staged")
	t.Setenv("SHEETSCAN_SHEETS_SPREADSHEET_ID", "from-env")
	t.Setenv("SHEETSCAN_STORAGE_CLEANUP_TIMEOUT_SEC", "7")

	cfg, err := newTestLoader().LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}
	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level from env, got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port from env, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Mode != "staged" {
		t.Errorf("Expected mode from env, got %s", cfg.Storage.Mode)
	}
	if cfg.Sheets.SpreadsheetID != "from-env" {
		t.Errorf("Expected spreadsheet id from env, got %s", cfg.Sheets.SpreadsheetID)
	}
	if cfg.Storage.CleanupTimeoutSec != 7 {
		t.Errorf("Expected cleanup timeout from env, got %d", cfg.Storage.CleanupTimeoutSec)
	}
}

// TestExplicitOverrides tests that values set on the viper instance win.
func TestExplicitOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	loader := newTestLoader()
	loader.GetViper().Set("server.port", 7070)

	cfg, err := loader.LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected Set() to win, got port %d", cfg.Server.Port)
	}
}

// TestGenerateDefaultConfigFile tests writing and re-reading the defaults.
func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	if err := GenerateDefaultConfigFile(path); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}

	cfg, err := newTestLoader().LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Server != def.Server || cfg.Storage != def.Storage || cfg.Sheets != def.Sheets {
		t.Errorf("Generated config differs from defaults: %+v", cfg)
	}
}

// TestGetConfigSearchPaths tests the search path order.
func TestGetConfigSearchPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	paths := GetConfigSearchPaths()
	if paths[0] != "." {
		t.Errorf("First search path should be '.', got %s", paths[0])
	}
	if paths[len(paths)-1] != "/etc/sheetscan" {
		t.Errorf("Last search path should be /etc/sheetscan, got %s", paths[len(paths)-1])
	}
	found := false
	for _, p := range paths {
		if p == filepath.Join(xdg, "sheetscan") {
			found = true
		}
	}
	if !found {
		t.Errorf("XDG path missing from %v", paths)
	}
}
