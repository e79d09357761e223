// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Duration is a time.Duration that reads and writes JSON strings such as "30s".
type Duration time.Duration

// UnmarshalJSON accepts Go duration strings.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON writes the duration in Go notation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Local SQLite database file

	// Extraction tuning data (denylists, markers, bounds)
	ExtractionConfig string `json:"extraction_config,omitempty"`

	// Fetching
	UseBrowser   bool     `json:"use_browser,omitempty"`   // Render pages in headless Chrome
	FetchTimeout Duration `json:"fetch_timeout,omitempty"` // Per-page fetch bound
	RenderWait   Duration `json:"render_wait,omitempty"`   // Fixed wait for client-side rendering
	RequestDelay Duration `json:"request_delay,omitempty"` // Pause between organizations
	MaxRetries   int      `json:"max_retries,omitempty"`   // Retries for transient fetch failures
	CacheTTL     Duration `json:"cache_ttl,omitempty"`     // Page cache freshness

	// Run
	Concurrency    int      `json:"concurrency,omitempty"`     // Organizations processed in parallel
	StaleAfter     Duration `json:"stale_after,omitempty"`     // Re-extract organizations older than this
	AliasThreshold float64  `json:"alias_threshold,omitempty"` // Jaro-Winkler score that flags a possible alias

	// Behavior
	LogLevel string `json:"log_level,omitempty"`
	Verbose  bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// Default values for the run configuration.
const (
	DefaultFetchTimeout   = 30 * time.Second
	DefaultRenderWait     = 6 * time.Second
	DefaultRequestDelay   = 2 * time.Second
	DefaultMaxRetries     = 2
	DefaultCacheTTL       = 24 * time.Hour
	DefaultConcurrency    = 1
	DefaultStaleAfter     = 30 * 24 * time.Hour
	DefaultAliasThreshold = 0.92
	DefaultLogLevel       = "info"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		FetchTimeout:   Duration(DefaultFetchTimeout),
		RenderWait:     Duration(DefaultRenderWait),
		RequestDelay:   Duration(DefaultRequestDelay),
		MaxRetries:     DefaultMaxRetries,
		CacheTTL:       Duration(DefaultCacheTTL),
		Concurrency:    DefaultConcurrency,
		StaleAfter:     Duration(DefaultStaleAfter),
		AliasThreshold: DefaultAliasThreshold,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.FetchTimeout < 0 || c.RenderWait < 0 || c.RequestDelay < 0 || c.CacheTTL < 0 || c.StaleAfter < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	if c.AliasThreshold < 0 || c.AliasThreshold > 1 {
		return fmt.Errorf("config error: 'alias_threshold' must be between 0 and 1")
	}

	if c.ExtractionConfig != "" {
		if _, err := os.Stat(c.ExtractionConfig); os.IsNotExist(err) {
			return fmt.Errorf("config error: extraction config not found: %s", c.ExtractionConfig)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" && result.SQLitePath == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.SQLitePath = defaults.SQLitePath
	}
	if result.ExtractionConfig == "" {
		result.ExtractionConfig = defaults.ExtractionConfig
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Numeric fields: use default if zero
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.RenderWait == 0 {
		result.RenderWait = defaults.RenderWait
	}
	if result.RequestDelay == 0 {
		result.RequestDelay = defaults.RequestDelay
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.StaleAfter == 0 {
		result.StaleAfter = defaults.StaleAfter
	}
	if result.AliasThreshold == 0 {
		result.AliasThreshold = defaults.AliasThreshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
