package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the timeline archiver
type Config struct {
	// Mastodon instance settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Archive storage settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds settings for the target Mastodon instance
type ServerConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// ArchiveConfig holds settings for the on-disk record store
type ArchiveConfig struct {
	// Root is the directory under which per-host archives are created.
	// Empty means the platform data directory.
	Root string `yaml:"root" json:"root"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Wait enables the pre-fetch wait derived from the last observed
	// rate-limit headers.
	Wait bool `yaml:"wait" json:"wait"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			UserAgent: "tootarchive/1.0 (+https://github.com/yourusername/tootarchive)",
			Timeout:   30 * time.Second,
		},
		Archive: ArchiveConfig{
			Root: "",
		},
		RateLimit: RateLimitConfig{
			Wait: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("TOOTARCHIVE_SERVER"); baseURL != "" {
		c.Server.BaseURL = baseURL
	}
	if userAgent := os.Getenv("TOOTARCHIVE_USER_AGENT"); userAgent != "" {
		c.Server.UserAgent = userAgent
	}
	if root := os.Getenv("TOOTARCHIVE_ROOT"); root != "" {
		c.Archive.Root = root
	}
	if wait := os.Getenv("TOOTARCHIVE_RATE_LIMIT_WAIT"); wait != "" {
		c.RateLimit.Wait = strings.ToLower(wait) == "true"
	}
	if logLevel := os.Getenv("TOOTARCHIVE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tootarchive.yaml",
		".tootarchive.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tootarchive", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tootarchive", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tootarchive.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.BaseURL == "" {
		errs = append(errs, errors.New("server base URL is required"))
	} else {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("server base URL is not a valid http(s) URL: %q", c.Server.BaseURL))
		}
	}

	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server timeout must be positive"))
	}

	// Mirrors the levels the logger itself parses.
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true,
		"error": true, "fatal": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Host returns the hostname of the configured instance. The record store
// is rooted per host so several instances can be archived side by side.
func (c *Config) Host() string {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

// ArchiveRoot resolves the archive root directory, falling back to the
// platform data directory when none is configured.
func (c *Config) ArchiveRoot() (string, error) {
	if c.Archive.Root != "" {
		return c.Archive.Root, nil
	}
	return defaultDataDirectory()
}

// defaultDataDirectory returns the appropriate data directory for the current OS
func defaultDataDirectory() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "tootarchive"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "tootarchive"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "tootarchive"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "tootarchive"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".tootarchive"), nil
	}
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["server"].(string); ok && baseURL != "" {
		c.Server.BaseURL = baseURL
	}
	if root, ok := flags["root"].(string); ok && root != "" {
		c.Archive.Root = root
	}
	if wait, ok := flags["wait"].(bool); ok {
		c.RateLimit.Wait = wait
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tootarchive.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
