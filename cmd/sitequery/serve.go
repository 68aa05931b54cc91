package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/sitequery/sitequery/internal/api"
	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/database"
	"github.com/sitequery/sitequery/internal/log"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve starts an HTTP server exposing the crawl and query operations:

  GET  /health        liveness check
  GET  /site-map      crawl a site and return its site map
  POST /query         crawl a site and answer a prompt about it
  GET  /history       list saved query reports
  GET  /history/:id   fetch one saved query report

Examples:
  # Listen on the default address
  sitequery serve

  # Listen on all interfaces, port 9000
  sitequery serve --addr 0.0.0.0:9000

  # Run without the history database
  sitequery serve --no-save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServerAddr,
		"Listen address for the HTTP server")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each outbound crawl request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay after each successful fetch")
	cmd.Flags().Bool("no-save", false,
		"Disable the history database (the /history endpoints return 404)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	delay, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		return err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	opts := []api.ServerOption{
		api.WithAddr(addr),
		api.WithClient(&http.Client{Timeout: timeout}),
		api.WithServerDelay(delay),
		api.WithServerLogger(logger),
	}

	if !noSave {
		db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		opts = append(opts, api.WithHistoryDB(db))
		logger.Info("history database opened", "dir", config.XDGDataDir())
	}

	srv := api.NewServer(opts...)

	fmt.Printf("sitequery API listening on %s\n", addr)
	return srv.Start(ctx)
}
