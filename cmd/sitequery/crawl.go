package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/crawler"
	"github.com/sitequery/sitequery/internal/log"
	"github.com/sitequery/sitequery/internal/model"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site and print its site map",
		Long: `Crawl visits a web site breadth-first, staying on the seed's host, and
prints a site map: every crawled page with the links found on it.
Off-host links are listed but never followed.

Examples:
  # Crawl with the default page budget
  sitequery crawl https://example.com

  # Crawl up to 25 pages and emit JSON
  sitequery crawl --max-pages 25 --json https://example.com

  # Write a Markdown site map to a file
  sitequery crawl --markdown -o sitemap.md https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultSiteMapMaxPages,
		"Maximum number of pages to crawl (clamped to 1-50)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay after each successful fetch")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitequery in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON site map (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown site map (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write site map to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	seed := cfg.Seeds[0]

	fmt.Fprintf(os.Stderr, "Crawling %s...\n", seed)
	startTime := time.Now()

	pages, err := crawlSeed(ctx, cfg, seed, logger)
	if err != nil {
		return fmt.Errorf("crawl failed for %s: %w", seed, err)
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "Crawled %d pages in %s\n\n", len(pages), elapsed.Round(time.Millisecond))

	return outputSiteMap(cfg, model.NewSiteMap(seed, pages))
}

// crawlSeed runs a bounded breadth-first crawl of one site, applying any
// host-specific overrides from the config file.
func crawlSeed(ctx context.Context, cfg *config.Config, seed string, logger *slog.Logger) ([]*model.Page, error) {
	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithFetcherLogger(logger),
	}

	maxPages := cfg.MaxPages
	if cfg.HostConfigs != nil {
		if u, err := url.Parse(seed); err == nil && u.Host != "" {
			hc := cfg.HostConfigs.GetHostConfig(u.Host)
			if len(hc.Headers) > 0 {
				fetcherOpts = append(fetcherOpts, crawler.WithHeaders(hc.Headers))
			}
			if hc.UserAgent != "" {
				fetcherOpts = append(fetcherOpts, crawler.WithUserAgent(hc.UserAgent))
			}
			if hc.MaxPages > 0 {
				maxPages = hc.MaxPages
			}
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	fetcher := crawler.NewFetcher(client, fetcherOpts...)
	spider := crawler.NewSpider(fetcher,
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithSpiderLogger(logger),
	)

	return spider.Crawl(ctx, seed)
}
