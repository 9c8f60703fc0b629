// Package config loads and validates finchat configuration.
// Configuration lives in .finchat/config.yaml under the workspace, with
// environment variables taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the workspace-relative location of the config file.
const ConfigFileName = ".finchat/config.yaml"

// Config holds all finchat configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Backend API configuration
	API APIConfig `yaml:"api"`

	// Local storage
	Storage StorageConfig `yaml:"storage"`

	// File uploads
	Upload UploadConfig `yaml:"upload"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the debug logging system.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "finchat",
		Version: "1.0.0",

		API: APIConfig{
			BaseURL: "https://api.finlit.example.com/v1",
			Timeout: "30s",
		},

		Storage: StorageConfig{
			DatabasePath: ".finchat/finchat.db",
		},

		Upload: UploadConfig{
			AllowedExtensions: []string{".pdf", ".png", ".jpg", ".jpeg", ".csv", ".txt"},
			MaxSizeBytes:      10 << 20,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWorkspace loads the config from the conventional workspace location.
func LoadWorkspace(workspace string) (*Config, error) {
	return Load(filepath.Join(workspace, ConfigFileName))
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables take precedence over
// file values.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("FINCHAT_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
	if key := os.Getenv("FINCHAT_API_KEY"); key != "" {
		c.API.APIKey = key
	}
	if timeout := os.Getenv("FINCHAT_TIMEOUT"); timeout != "" {
		c.API.Timeout = timeout
	}
	if path := os.Getenv("FINCHAT_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if os.Getenv("FINCHAT_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := c.API.RequestTimeout(); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if c.Upload.MaxSizeBytes < 0 {
		return fmt.Errorf("upload.max_size_bytes must be non-negative")
	}
	return nil
}

// parseDuration parses a duration string, falling back to def when empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
