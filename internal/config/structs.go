//nolint:lll
package config

// Config represents the complete configuration for the sheetscan service.
// It is shared by the serve, process and catalog commands and is loaded from
// configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Google Cloud project and Document AI processor
	Google GoogleConfig `mapstructure:"google" yaml:"google" json:"google"`

	// Image staging
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`

	// Target spreadsheet
	Sheets SheetsConfig `mapstructure:"sheets" yaml:"sheets" json:"sheets"`

	// Accepted item names
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog" json:"catalog"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string  `mapstructure:"host" yaml:"host" json:"host"`
	Port            int     `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string  `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int     `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int     `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       float64 `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"` // requests per second per client, 0 disables
	RateBurst       int     `mapstructure:"rate_burst" yaml:"rate_burst" json:"rate_burst"`
}

// GoogleConfig identifies the Document AI processor and the credentials used
// for all Google API calls. An empty CredentialsFile means application default
// credentials.
type GoogleConfig struct {
	ProjectID       string `mapstructure:"project_id" yaml:"project_id" json:"project_id"`
	Location        string `mapstructure:"location" yaml:"location" json:"location"`
	ProcessorID     string `mapstructure:"processor_id" yaml:"processor_id" json:"processor_id"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file" json:"credentials_file"`
}

// StorageConfig selects inline or staged submission and where staged images go.
type StorageConfig struct {
	Mode              string `mapstructure:"mode" yaml:"mode" json:"mode"`
	Bucket            string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	Prefix            string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	CleanupTimeoutSec int    `mapstructure:"cleanup_timeout_sec" yaml:"cleanup_timeout_sec" json:"cleanup_timeout_sec"`
}

// SheetsConfig points at the spreadsheet rows are appended to.
type SheetsConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id" json:"spreadsheet_id"`
	Range         string `mapstructure:"range" yaml:"range" json:"range"`
}

// CatalogConfig lists accepted items inline or in a YAML file. The file wins
// when both are set.
type CatalogConfig struct {
	File  string   `mapstructure:"file" yaml:"file" json:"file"`
	Items []string `mapstructure:"items" yaml:"items" json:"items"`
}
