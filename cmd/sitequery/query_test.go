package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/model"
	"github.com/sitequery/sitequery/internal/report"
)

// TestNewQueryCmd tests the query command creation.
func TestNewQueryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewQueryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "query [url]..." {
			t.Errorf("expected use 'query [url]...', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has prompt flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("prompt")
		if flag == nil {
			t.Fatal("expected prompt flag")
		}
		if flag.Shorthand != "q" {
			t.Errorf("expected shorthand 'q', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
		if flag.DefValue != "12" {
			t.Errorf("expected default '12', got %q", flag.DefValue)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewQueryCmd()
		if getVerboseFlag(cmd) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		queryCmd, _, err := root.Find([]string{"query"})
		if err != nil {
			t.Fatalf("failed to find query command: %v", err)
		}

		if !getVerboseFlag(queryCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewQueryCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("expected seeds [https://example.com], got %v", cfg.Seeds)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected MaxPages %d, got %d", config.DefaultMaxPages, cfg.MaxPages)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected Timeout %s, got %s", config.DefaultTimeout, cfg.Timeout)
		}
	})

	t.Run("builds config with custom max-pages", func(t *testing.T) {
		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("max-pages", "30")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 30 {
			t.Errorf("expected MaxPages 30, got %d", cfg.MaxPages)
		}
	})

	t.Run("builds config with custom delay", func(t *testing.T) {
		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("delay", "1s")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.CrawlDelay != time.Second {
			t.Errorf("expected CrawlDelay 1s, got %s", cfg.CrawlDelay)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with multiple seeds", func(t *testing.T) {
		cmd := NewQueryCmd()
		cfg, err := buildConfig(cmd, []string{"https://a.example", "https://b.example", "https://c.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 3 {
			t.Errorf("expected 3 seeds, got %d", len(cfg.Seeds))
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "sitequery.yaml")

		content := []byte(`
defaults:
  maxPages: 20
hosts:
  example.com:
    userAgent: custom-agent/1.0
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.HostConfigs == nil {
			t.Fatal("expected HostConfigs to be loaded")
		}
		if cfg.HostConfigs.Defaults.MaxPages != 20 {
			t.Errorf("expected default maxPages 20, got %d", cfg.HostConfigs.Defaults.MaxPages)
		}
		if cfg.HostConfigs.Hosts["example.com"].UserAgent != "custom-agent/1.0" {
			t.Errorf("unexpected host user agent %q", cfg.HostConfigs.Hosts["example.com"].UserAgent)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewQueryCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})
}

// TestHostOverrideOptions tests host override resolution for crawl steps.
func TestHostOverrideOptions(t *testing.T) {
	t.Parallel()

	t.Run("returns nil for nil HostConfigs", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{HostConfigs: nil}
		if opts := hostOverrideOptions(cfg, "https://example.com"); opts != nil {
			t.Errorf("expected nil options, got %d", len(opts))
		}
	})

	t.Run("returns nil for empty seed", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{HostConfigs: &config.File{}}
		if opts := hostOverrideOptions(cfg, ""); opts != nil {
			t.Errorf("expected nil options, got %d", len(opts))
		}
	})

	t.Run("returns options for matching host", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			HostConfigs: &config.File{
				Hosts: map[string]config.HostConfig{
					"example.com": {
						MaxPages:  25,
						UserAgent: "custom/1.0",
						Headers:   map[string]string{"Authorization": "Bearer x"},
					},
				},
			},
		}
		opts := hostOverrideOptions(cfg, "https://example.com/page")
		if len(opts) != 3 {
			t.Errorf("expected 3 options, got %d", len(opts))
		}
	})

	t.Run("returns nil for host without overrides", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			HostConfigs: &config.File{
				Hosts: map[string]config.HostConfig{
					"other.example": {MaxPages: 25},
				},
			},
		}
		if opts := hostOverrideOptions(cfg, "https://example.com"); opts != nil {
			t.Errorf("expected nil options, got %d", len(opts))
		}
	})
}

// TestSelectWriter tests report writer selection.
func TestSelectWriter(t *testing.T) {
	t.Parallel()

	t.Run("defaults to simple writer", func(t *testing.T) {
		t.Parallel()
		w := selectWriter(&config.Config{}, os.Stdout)
		if _, ok := w.(*report.SimpleWriter); !ok {
			t.Errorf("expected *report.SimpleWriter, got %T", w)
		}
	})

	t.Run("selects JSON writer", func(t *testing.T) {
		t.Parallel()
		w := selectWriter(&config.Config{JSONReport: true}, os.Stdout)
		if _, ok := w.(*report.JSONWriter); !ok {
			t.Errorf("expected *report.JSONWriter, got %T", w)
		}
	})

	t.Run("selects Markdown writer", func(t *testing.T) {
		t.Parallel()
		w := selectWriter(&config.Config{MarkdownReport: true}, os.Stdout)
		if _, ok := w.(*report.MarkdownWriter); !ok {
			t.Errorf("expected *report.MarkdownWriter, got %T", w)
		}
	})
}

// TestOutputReport tests report output to a file.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON report to nested output path", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "reports", "out.json")
		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outPath,
		}

		queryReport := model.NewQueryReport("https://example.com", "publications?")
		queryReport.Answer = "No publications detected via heuristics."

		if err := outputReport(cfg, queryReport); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["seed"] != "https://example.com" {
			t.Errorf("expected seed in output, got %v", decoded["seed"])
		}
	})

	t.Run("writes site map to output path", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "sitemap.json")
		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outPath,
		}

		siteMap := model.NewSiteMap("https://example.com", []*model.Page{
			{URL: "https://example.com", Links: []model.Link{{Href: "https://example.com/a", Text: "A"}}},
		})

		if err := outputSiteMap(cfg, siteMap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !strings.Contains(string(data), `"base"`) {
			t.Errorf("expected site map JSON, got %s", data)
		}
	})
}
