// ABOUTME: Configuration loading and parsing for duochat
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete duochat configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Client   ClientConfig   `yaml:"client"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClientConfig holds settings handed to the chat clients
type ClientConfig struct {
	PollInterval time.Duration `yaml:"-"`
	HistoryLimit int           `yaml:"history_limit"`

	// Raw string value for YAML unmarshaling
	PollIntervalRaw string `yaml:"poll_interval"`
}

// Default returns the configuration used when no config file exists.
// The listen port honors the PORT environment variable and falls back
// to 3000.
func Default() *Config {
	addr := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	return &Config{
		Server:   ServerConfig{HTTPAddr: addr},
		Database: DatabaseConfig{Path: "duochat.db"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Client: ClientConfig{
			PollInterval: 2 * time.Second,
			HistoryLimit: 100,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
// Fields left unset in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	cfg.Client.PollInterval = 0 // re-derived below so the file can override it
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if cfg.Client.PollInterval == 0 {
		cfg.Client.PollInterval = 2 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Client.PollInterval < 0 {
		return fmt.Errorf("client.poll_interval must not be negative")
	}
	if c.Client.HistoryLimit < 1 {
		return fmt.Errorf("client.history_limit must be at least 1")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Client.PollIntervalRaw != "" {
		cfg.Client.PollInterval, err = time.ParseDuration(cfg.Client.PollIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing poll_interval %q: %w", cfg.Client.PollIntervalRaw, err)
		}
	}

	return nil
}
