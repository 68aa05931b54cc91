package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/database"
	"github.com/sitequery/sitequery/internal/log"
	"github.com/sitequery/sitequery/internal/model"
	"github.com/sitequery/sitequery/internal/pipeline"
	"github.com/sitequery/sitequery/internal/report"
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [url]...",
		Short: "Crawl one or more sites and answer a question about each",
		Long: `Query crawls a web site breadth-first within a bounded page budget and
answers the given prompt using lightweight text heuristics.

Recognized prompt kinds:
- Google Scholar: locate a Google Scholar profile link on the site
- Publications: extract citation-like lines (years plus punctuation)
- Anything else: summarize the crawled pages

Examples:
  # Ask about publications on a personal site
  sitequery query https://example.com --prompt "list the publications"

  # Find a Google Scholar link
  sitequery query https://example.com -q "google scholar profile?"

  # Query several independent sites concurrently
  sitequery query https://a.example https://b.example -q "publications"

  # Output a Markdown report to a file
  sitequery query --markdown -o report.md https://example.com -q "summary"

Configuration file (.sitequery) example:
  hosts:
    example.com:
      maxPages: 20
      headers:
        Authorization: "Bearer token"
  defaults:
    userAgent: "my-crawler/1.0"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runQueryCmd,
	}

	cmd.Flags().StringP("prompt", "q", "",
		"Question to answer about each crawled site (required)")

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site (clamped to 1-50)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay after each successful fetch")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when querying multiple sites")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitequery in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the query report to the history database")

	return cmd
}

// runQueryCmd executes the query command.
func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return err
	}
	if strings.TrimSpace(prompt) == "" {
		return config.ErrEmptyPrompt
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave
	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runQuery(ctx, cfg, prompt, logger)
}

// runQuery crawls each seed and answers the prompt.
func runQuery(ctx context.Context, cfg *config.Config, prompt string, logger *slog.Logger) error {
	logger.Info("starting query",
		"seeds", cfg.Seeds,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchQuery(ctx, cfg, prompt, db, logger)
	}

	return runSequentialQuery(ctx, cfg, prompt, db, logger)
}

// runSequentialQuery crawls seeds one at a time.
func runSequentialQuery(ctx context.Context, cfg *config.Config, prompt string, db *database.HistoryDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := newPipelineForSeed(cfg, seed, db, logger)
		queryReport := model.NewQueryReport(seed, prompt)

		fmt.Printf("Querying %s...\n", seed)
		startTime := time.Now()

		if err := p.Execute(ctx, queryReport); err != nil {
			logger.Error("query failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Query error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Query completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, queryReport); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchQuery crawls multiple seeds concurrently using BatchProcessor.
func runBatchQuery(ctx context.Context, cfg *config.Config, prompt string, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch query of %d sites (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.HostConfigs != nil && len(cfg.HostConfigs.Hosts) > 0 {
		logger.Warn("batch processing uses default host config only; host-specific configs (headers, maxPages) are ignored",
			"hostCount", len(cfg.HostConfigs.Hosts))
		fmt.Fprintf(os.Stderr, "Warning: Host-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-host settings.\n\n")
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Batch pipelines share one configuration, so host-specific
			// overrides are not applied here.
			return newPipelineForSeed(cfg, "", db, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Seeds, prompt, func(queryReport *model.QueryReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Query completed: %s\n", index+1, len(cfg.Seeds), queryReport.Seed)

		if err := outputReport(cfg, queryReport); err != nil {
			logger.Error("report failed", "seed", queryReport.Seed, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch query completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// newPipelineForSeed creates a crawl+answer(+save) pipeline for one seed.
// Host-specific overrides from the config file are applied when the seed
// URL parses and its host has an entry.
func newPipelineForSeed(cfg *config.Config, seed string, db *database.HistoryDB, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)

	crawlOpts := []pipeline.CrawlStepOption{
		pipeline.WithCrawlMaxPages(cfg.MaxPages),
		pipeline.WithCrawlDelay(cfg.CrawlDelay),
		pipeline.WithCrawlUserAgent(cfg.UserAgent),
		pipeline.WithCrawlMaxBodySize(cfg.MaxBodySize),
		pipeline.WithCrawlLogger(logger),
	}
	crawlOpts = append(crawlOpts, hostOverrideOptions(cfg, seed)...)

	client := &http.Client{Timeout: cfg.Timeout}
	p.AddStep(pipeline.NewCrawlStep(client, crawlOpts...))
	p.AddStep(pipeline.NewAnswerStep(pipeline.WithAnswerLogger(logger)))
	if db != nil {
		p.AddStep(pipeline.NewSaveStep(db, pipeline.WithSaveLogger(logger)))
	}

	return p
}

// hostOverrideOptions returns crawl options derived from the config file
// entry for the seed's host. Returns nil when no overrides apply.
func hostOverrideOptions(cfg *config.Config, seed string) []pipeline.CrawlStepOption {
	if cfg.HostConfigs == nil || seed == "" {
		return nil
	}

	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return nil
	}
	hc := cfg.HostConfigs.GetHostConfig(u.Host)

	var opts []pipeline.CrawlStepOption
	if len(hc.Headers) > 0 {
		opts = append(opts, pipeline.WithCrawlHeaders(hc.Headers))
	}
	if hc.UserAgent != "" {
		opts = append(opts, pipeline.WithCrawlUserAgent(hc.UserAgent))
	}
	if hc.MaxPages > 0 {
		opts = append(opts, pipeline.WithCrawlMaxPages(hc.MaxPages))
	}
	return opts
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the flags shared by the crawl and
// query commands.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load host-specific configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.HostConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.HostConfigs = &config.File{
			Hosts: make(map[string]config.HostConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// outputReport writes the query report in the requested format.
func outputReport(cfg *config.Config, queryReport *model.QueryReport) error {
	output, closeOutput, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	_, err = selectWriter(cfg, output).Write(queryReport)
	return err
}

// outputSiteMap writes the site map in the requested format.
func outputSiteMap(cfg *config.Config, siteMap *model.SiteMap) error {
	output, closeOutput, err := openReportOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	_, err = selectWriter(cfg, output).WriteSiteMap(siteMap)
	return err
}

// openReportOutput resolves the report destination. The returned close
// function is a no-op when writing to stdout.
func openReportOutput(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// selectWriter picks the report writer for the configured output format.
func selectWriter(cfg *config.Config, output *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithShowLinks(cfg.Verbose))
	}
}
