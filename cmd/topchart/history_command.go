package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/output"
	"github.com/use-agent/topchart/summary"
)

func newHistoryCommand(cfg *config.Config) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last run stored in a SQLite result file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			store, err := output.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			run, err := store.LastRun(cmd.Context())
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(out, "No runs stored.")
				return nil
			}

			fmt.Fprintf(out, "Run #%d at %s\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "Source:  %s\n", run.SourceURL)
			fmt.Fprintf(out, "Engine:  %s\n", run.EngineUsed)
			fmt.Fprintf(out, "Locator: %s\n", run.RowLocator)
			fmt.Fprintf(out, "Rows:    %d found, %d skipped\n", run.RowsFound, run.Skipped)

			movies, err := store.Movies(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if limit > 0 && len(movies) > limit {
				movies = movies[:limit]
			}
			if len(movies) > 0 {
				fmt.Fprintln(out, summary.SampleTable(movies))
			}
			return nil
		},
	}

	defaultDB := config.OutputConfig{Path: cfg.Output.Path, Format: "sqlite"}.ResolvedPath()
	cmd.Flags().StringVar(&dbPath, "db", defaultDB, "SQLite result file written with --format sqlite")
	cmd.Flags().IntVar(&limit, "limit", 10, "Movies to show, 0 for all")

	return cmd
}
