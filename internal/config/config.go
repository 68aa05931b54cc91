package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the behavior of the sitequery heuristics as originally tuned:
// small page budgets, a short politeness delay, and a conservative timeout.
const (
	// DefaultTimeout is the per-request HTTP timeout. Crawled sites are
	// ordinary clearnet hosts, so 15 seconds is generous without letting a
	// single slow page stall the whole crawl for minutes.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxPages is the page budget for query crawls. Twelve pages is
	// enough to cover a typical personal or project site (home, publications,
	// contact, a few content pages) while keeping query latency low.
	DefaultMaxPages = 12

	// DefaultSiteMapMaxPages is the page budget for site-map crawls, which
	// tend to be exploratory and benefit from a slightly tighter bound.
	DefaultSiteMapMaxPages = 10

	// MinPages and MaxPagesLimit bound the page budget. Every crawl clamps
	// into [MinPages, MaxPagesLimit] regardless of what the caller asked for.
	MinPages      = 1
	MaxPagesLimit = 50

	// DefaultCrawlDelay is the politeness delay after each successful fetch.
	// 250ms keeps a full 50-page crawl under 15 seconds of sleeping while
	// still spacing requests out.
	DefaultCrawlDelay = 250 * time.Millisecond

	// DefaultUserAgent identifies sitequery in HTTP requests. A descriptive
	// User-Agent lets site operators recognize crawler traffic in their logs.
	DefaultUserAgent = "sitequery/1.0 (+https://github.com/sitequery/sitequery)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB covers any realistic HTML page while bounding memory use.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultServerAddr is the listen address for the HTTP API.
	DefaultServerAddr = "127.0.0.1:8080"

	// DefaultBatchSize is the number of concurrent crawls when querying
	// multiple seed URLs. Each crawl is sequential internally; this only
	// parallelizes across independent sites.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "sitequery"
)

// Config holds all configuration options for sitequery.
// It is populated from CLI flags (or API request parameters) and passed
// through the application explicitly rather than via global state.
//
// Design decision: one flat struct instead of nested sub-configs. The
// option count is small enough that nesting would add ceremony without
// clarifying anything.
type Config struct {
	// Seeds is the list of seed URLs to crawl. Most commands use exactly
	// one; the batch query path accepts several and crawls each site
	// independently.
	Seeds []string

	// MaxPages is the page budget per crawl. The crawl engine clamps it
	// into [MinPages, MaxPagesLimit] defensively even if validation is
	// skipped.
	MaxPages int

	// Timeout is the per-request HTTP timeout. It bounds one fetch, not
	// the whole crawl.
	Timeout time.Duration

	// CrawlDelay is the politeness delay inserted after each successful
	// fetch. Zero disables the delay (useful in tests).
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent crawls for multi-seed queries.
	BatchSize int

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .sitequery in the current directory and then in
	// the user's home directory.
	ConfigFilePath string

	// HostConfigs holds per-host overrides loaded from the config file.
	HostConfigs *File

	// JSONReport enables JSON output instead of the human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of the human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When empty, the
	// report goes to stdout.
	ReportFile string

	// ServerAddr is the listen address for the serve command.
	ServerAddr string

	// DBDir is the directory for the SQLite history database. When set,
	// completed query reports are saved for later inspection via the
	// history command. Crawl traversal state is never persisted: the
	// frontier and visited set live and die with a single crawl call.
	DBDir string

	// SaveToDB indicates whether to save query reports to the database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of relying on zero values,
// because most defaults are non-zero and this doubles as documentation
// of what they are.
func NewConfig() *Config {
	return &Config{
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
		ServerAddr:  DefaultServerAddr,
	}
}

// XDGDataDir returns the XDG data directory for sitequery.
// On Linux: ~/.local/share/sitequery
// On macOS: ~/Library/Application Support/sitequery
// On Windows: %LOCALAPPDATA%\sitequery
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid and returns a specific
// error describing the first problem found. It is called once after flag
// parsing, before any network activity.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrEmptySeedURL
	}
	for _, seed := range c.Seeds {
		if seed == "" {
			return ErrEmptySeedURL
		}
	}

	if c.MaxPages < MinPages || c.MaxPages > MaxPagesLimit {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
