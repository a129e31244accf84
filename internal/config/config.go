// Package config loads cipherprobe's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cipherprobe/internal/cipher"

	"gopkg.in/yaml.v3"
)

// Config holds all cipherprobe configuration.
type Config struct {
	// Encryption oracle
	Oracle OracleConfig `yaml:"oracle"`

	// Map and matrix building
	Mapping MappingConfig `yaml:"mapping"`

	// Terminal output
	Display DisplayConfig `yaml:"display"`

	// Session persistence
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// OracleConfig configures the remote encryption service.
type OracleConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"` // per request
	Delay   string `yaml:"delay"`   // pause between consecutive queries
	Cache   bool   `yaml:"cache"`   // answer repeated queries from the store
}

// MappingConfig configures map and matrix construction.
type MappingConfig struct {
	Alphabet    string `yaml:"alphabet"`
	RepeatCount int    `yaml:"repeat_count"`
}

// DisplayConfig configures terminal output.
type DisplayConfig struct {
	Width int `yaml:"width"`
}

// StoreConfig configures the SQLite session store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			BaseURL: "http://api.trytodecrypt.com/encrypt",
			Timeout: "20s",
			Delay:   "100ms",
		},

		Mapping: MappingConfig{
			Alphabet:    cipher.DefaultAlphabet,
			RepeatCount: cipher.DefaultRepeatCount,
		},

		Display: DisplayConfig{
			Width: 100,
		},

		Store: StoreConfig{
			DatabasePath: filepath.Join(".probe", "probe.db"),
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("PROBE_API_KEY"); key != "" {
		c.Oracle.APIKey = key
	}
	if url := os.Getenv("PROBE_ORACLE_URL"); url != "" {
		c.Oracle.BaseURL = url
	}
	if path := os.Getenv("PROBE_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if alphabet := os.Getenv("PROBE_ALPHABET"); alphabet != "" {
		c.Mapping.Alphabet = alphabet
	}
}

// GetTimeout returns the oracle request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// GetDelay returns the pause between oracle queries. An explicit "0s"
// disables pacing.
func (c *Config) GetDelay() time.Duration {
	d, err := time.ParseDuration(c.Oracle.Delay)
	if err != nil || d < 0 {
		return cipher.DefaultDelay
	}
	return d
}

// GetAlphabet parses the configured alphabet.
func (c *Config) GetAlphabet() (cipher.Alphabet, error) {
	return cipher.ParseAlphabet(c.Mapping.Alphabet)
}

// Validate validates the configuration, including the oracle credentials.
func (c *Config) Validate() error {
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("oracle API key not configured (set oracle.api_key, PROBE_API_KEY, or --api-key)")
	}
	return c.ValidateLocal()
}

// ValidateLocal validates everything commands need when they never reach the
// oracle, such as decode and show.
func (c *Config) ValidateLocal() error {
	if _, err := c.GetAlphabet(); err != nil {
		return fmt.Errorf("invalid alphabet: %w", err)
	}
	if c.Mapping.RepeatCount <= 0 {
		return fmt.Errorf("repeat_count must be > 0, got %d", c.Mapping.RepeatCount)
	}
	if c.Display.Width <= 0 {
		return fmt.Errorf("display width must be > 0, got %d", c.Display.Width)
	}
	return nil
}
