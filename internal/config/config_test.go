package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("expected MaxPages %d, got %d", DefaultMaxPages, cfg.MaxPages)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected Timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.CrawlDelay != DefaultCrawlDelay {
		t.Errorf("expected CrawlDelay %v, got %v", DefaultCrawlDelay, cfg.CrawlDelay)
	}
	if cfg.UserAgent == "" {
		t.Error("expected non-empty UserAgent")
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("expected MaxBodySize %d, got %d", DefaultMaxBodySize, cfg.MaxBodySize)
	}
	if cfg.ServerAddr != DefaultServerAddr {
		t.Errorf("expected ServerAddr %q, got %q", DefaultServerAddr, cfg.ServerAddr)
	}
}

// TestConfigValidate tests validation of every field.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://example.com/"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no seeds",
			mutate:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrEmptySeedURL,
		},
		{
			name:    "empty seed string",
			mutate:  func(c *Config) { c.Seeds = []string{""} },
			wantErr: ErrEmptySeedURL,
		},
		{
			name:    "max pages too small",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "max pages too large",
			mutate:  func(c *Config) { c.MaxPages = 51 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative crawl delay",
			mutate:  func(c *Config) { c.CrawlDelay = -time.Second },
			wantErr: ErrInvalidCrawlDelay,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading and host merging.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads hosts and defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `defaults:
  maxPages: 8
hosts:
  example.com:
    maxPages: 20
    userAgent: "custom-agent/1.0"
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		hc := cf.GetHostConfig("example.com")
		if hc.MaxPages != 20 {
			t.Errorf("expected MaxPages 20, got %d", hc.MaxPages)
		}
		if hc.UserAgent != "custom-agent/1.0" {
			t.Errorf("expected custom user agent, got %q", hc.UserAgent)
		}
		if hc.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header, got %v", hc.Headers)
		}

		// Unknown hosts fall back to defaults.
		other := cf.GetHostConfig("other.com")
		if other.MaxPages != 8 {
			t.Errorf("expected defaults MaxPages 8, got %d", other.MaxPages)
		}
	})

	t.Run("host header merge does not mutate the defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: HostConfig{
				Headers: map[string]string{"Accept-Language": "en"},
			},
			Hosts: map[string]HostConfig{
				"secure.example": {
					Headers: map[string]string{"Authorization": "Bearer secret"},
				},
			},
		}

		hc := cf.GetHostConfig("secure.example")
		if hc.Headers["Authorization"] != "Bearer secret" {
			t.Errorf("expected merged Authorization header, got %v", hc.Headers)
		}
		if hc.Headers["Accept-Language"] != "en" {
			t.Errorf("expected defaults header preserved, got %v", hc.Headers)
		}

		// The host's headers must not appear on other hosts.
		if _, ok := cf.Defaults.Headers["Authorization"]; ok {
			t.Error("defaults map was mutated by the host merge")
		}
		other := cf.GetHostConfig("other.example")
		if _, ok := other.Headers["Authorization"]; ok {
			t.Errorf("host headers leaked to another host: %v", other.Headers)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("hosts: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindConfigFile tests the search order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "conf.yaml")
		if err := os.WriteFile(path, []byte("hosts: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}
