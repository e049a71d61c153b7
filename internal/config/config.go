// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	// Substitute environment variables (e.g. ${DATA_DIR})
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %v", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %v", err)
	}

	return LoadFromBytes(data)
}

// applyDefaults applies default values to the configuration.
func applyDefaults(cfg *Config) {
	if cfg.Scraper.RequestTimeout == 0 {
		cfg.Scraper.RequestTimeout = 30 * time.Second
	}

	if cfg.Scraper.RetryAttempts == 0 {
		cfg.Scraper.RetryAttempts = 3
	}

	if cfg.Scraper.RetryDelay == 0 {
		cfg.Scraper.RetryDelay = time.Second
	}

	if cfg.Scraper.RateLimit == 0 {
		cfg.Scraper.RateLimit = 4.0
	}

	if cfg.Scraper.RateBurst == 0 {
		cfg.Scraper.RateBurst = 8
	}

	if cfg.Scraper.MaxConcurrency == 0 {
		cfg.Scraper.MaxConcurrency = 8
	}

	if cfg.Scraper.LatestOnlyLimit == 0 {
		cfg.Scraper.LatestOnlyLimit = DefaultLatestOnlyLimit
	}

	if cfg.Output.DataDir == "" {
		cfg.Output.DataDir = "./data"
	}

	if cfg.Monitoring.ListenAddress == "" {
		cfg.Monitoring.ListenAddress = ":9090"
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for slug, show := range cfg.Shows {
		if show.FeedSource == "" {
			show.FeedSource = FeedSourceJSON
			cfg.Shows[slug] = show
		}
	}
}
