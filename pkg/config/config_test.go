package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("expected default timeout of 30s, got %v", cfg.Server.Timeout)
	}
	if !cfg.RateLimit.Wait {
		t.Error("expected rate-limit wait to default to enabled")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOOTARCHIVE_SERVER", "https://example.social")
	t.Setenv("TOOTARCHIVE_ROOT", "/var/lib/tootarchive")
	t.Setenv("TOOTARCHIVE_RATE_LIMIT_WAIT", "false")
	t.Setenv("TOOTARCHIVE_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://example.social" {
		t.Errorf("expected base URL from env, got %q", cfg.Server.BaseURL)
	}
	if cfg.Archive.Root != "/var/lib/tootarchive" {
		t.Errorf("expected archive root from env, got %q", cfg.Archive.Root)
	}
	if cfg.RateLimit.Wait {
		t.Error("expected rate-limit wait disabled via env")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  base_url: https://example.social
  timeout: 10s
archive:
  root: /tmp/archive
rate_limit:
  wait: false
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://example.social" {
		t.Errorf("expected base URL from file, got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Server.Timeout)
	}
	if cfg.RateLimit.Wait {
		t.Error("expected rate-limit wait disabled via file")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFileMissingPathIsError(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicitly named missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "Valid",
			mutate: func(c *Config) { c.Server.BaseURL = "https://example.social" },
		},
		{
			name:    "MissingBaseURL",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name:    "BadScheme",
			mutate:  func(c *Config) { c.Server.BaseURL = "ftp://example.social" },
			wantErr: true,
		},
		{
			name: "NonPositiveTimeout",
			mutate: func(c *Config) {
				c.Server.BaseURL = "https://example.social"
				c.Server.Timeout = 0
			},
			wantErr: true,
		},
		{
			name: "FatalLogLevel",
			mutate: func(c *Config) {
				c.Server.BaseURL = "https://example.social"
				c.Logging.Level = "fatal"
			},
		},
		{
			name: "DisabledLogLevel",
			mutate: func(c *Config) {
				c.Server.BaseURL = "https://example.social"
				c.Logging.Level = "disabled"
			},
		},
		{
			name: "BadLogLevel",
			mutate: func(c *Config) {
				c.Server.BaseURL = "https://example.social"
				c.Logging.Level = "loud"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestHost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://example.social:8443/"
	if got := cfg.Host(); got != "example.social" {
		t.Errorf("expected host example.social, got %q", got)
	}

	cfg.Server.BaseURL = "not a url at all"
	if got := cfg.Host(); got != "unknown" {
		t.Errorf("expected unknown host fallback, got %q", got)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://old.example"

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"server":    "https://example.social",
		"root":      "/data/archive",
		"wait":      false,
		"log-level": "debug",
	})

	if cfg.Server.BaseURL != "https://example.social" {
		t.Errorf("expected flag to override base URL, got %q", cfg.Server.BaseURL)
	}
	if cfg.Archive.Root != "/data/archive" {
		t.Errorf("expected flag to set archive root, got %q", cfg.Archive.Root)
	}
	if cfg.RateLimit.Wait {
		t.Error("expected flag to disable rate-limit wait")
	}
}

func TestArchiveRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Archive.Root = "/explicit/root"
	root, err := cfg.ArchiveRoot()
	if err != nil {
		t.Fatalf("ArchiveRoot failed: %v", err)
	}
	if root != "/explicit/root" {
		t.Errorf("expected explicit root, got %q", root)
	}
}
