package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/database"
	"github.com/sitequery/sitequery/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved query reports",
		Long: `History lists query reports previously saved by the query command and
the HTTP API. Only completed reports are stored; crawl traversal state
is never persisted.

Examples:
  # List all saved reports
  sitequery history

  # List reports for one site
  sitequery history --url https://example.com

  # Show the full report with ID 3
  sitequery history --id 3

  # List distinct seed URLs that have saved reports
  sitequery history --seeds`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Show the full report with the given ID")
	cmd.Flags().StringP("url", "u", "", "Filter reports by seed URL")
	cmd.Flags().BoolP("json", "j", false, "Output the full report as JSON (with --id)")
	cmd.Flags().Bool("seeds", false, "List distinct seed URLs only")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	urlFilter, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	seedsOnly, err := cmd.Flags().GetBool("seeds")
	if err != nil {
		return err
	}

	// Never create the database here: an empty history should read as
	// "nothing saved yet", not silently materialize a data directory.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no history database found (run a query first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if id > 0 {
		queryReport, err := db.GetReportByID(ctx, id)
		if err != nil {
			return err
		}
		if queryReport == nil {
			return fmt.Errorf("no report with ID %d", id)
		}

		var w report.Writer
		if jsonOutput {
			w = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		} else {
			w = report.NewSimpleWriter(os.Stdout)
		}
		_, err = w.Write(queryReport)
		return err
	}

	if seedsOnly {
		seeds, err := db.ListSeeds(ctx)
		if err != nil {
			return err
		}
		for _, seed := range seeds {
			fmt.Println(seed)
		}
		return nil
	}

	entries, err := db.GetHistoryWithMetadata(ctx, urlFilter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No saved reports.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIMESTAMP\tPAGES\tSEED\tPROMPT")
	for _, e := range entries {
		status := ""
		if e.TimedOut {
			status = " (timed out)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d%s\t%s\t%s\n",
			e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.PagesCrawled, status, e.Seed, e.Prompt)
	}
	return tw.Flush()
}
