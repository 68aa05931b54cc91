// Package main provides the entry point for the sitequery CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitequery.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitequery",
		Short: "Crawl a web site and answer questions about it",
		Long: `sitequery crawls a single web site breadth-first within a bounded page
budget and answers natural-language prompts about it with lightweight
heuristics. It can extract citation-like publication lines, locate a
Google Scholar profile link, and summarize the crawled pages.

Crawls stay on the seed's host, fetch pages strictly one at a time, and
pause briefly after each page out of politeness.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
