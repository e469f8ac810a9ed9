package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/topchart/config"
	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/summary"
)

type scrapeFlags struct {
	url       string
	fetchMode string
	output    string
	format    string
	headless  bool
	maxRows   int
	timeout   time.Duration
	sample    int
	noStealth bool
}

func newScrapeCommand(cfg *config.Config) *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the chart once and save the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyScrapeFlags(cmd, cfg, &flags)

			a, err := newApp(cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req := &models.ScrapeRequest{}
			if flags.noStealth {
				off := false
				req.Stealth = &off
			}
			resp, runErr := a.service.Scrape(ctx, req)
			summary.Render(cmd.OutOrStdout(), resp, cfg.Output.SampleSize)
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.url, "url", cfg.Scraper.ChartURL, "Chart page to scrape")
	f.StringVar(&flags.fetchMode, "fetch-mode", cfg.Scraper.FetchMode, "How to load the page: browser, http or auto")
	f.StringVarP(&flags.output, "output", "o", cfg.Output.Path, "Result file, overwritten on each run (default "+config.DefaultOutputBase+" plus the --format extension)")
	f.StringVar(&flags.format, "format", cfg.Output.Format, "Result format: csv, json, markdown or sqlite")
	f.BoolVar(&flags.headless, "headless", cfg.Browser.Headless, "Run the browser without a window")
	f.IntVar(&flags.maxRows, "max-rows", cfg.Scraper.MaxRows, "Maximum rows to visit")
	f.DurationVar(&flags.timeout, "timeout", cfg.Scraper.Timeout, "Upper bound for the whole run")
	f.IntVar(&flags.sample, "sample", cfg.Output.SampleSize, "Movies shown in the console sample")
	f.BoolVar(&flags.noStealth, "no-stealth", false, "Disable automation masking in the browser")

	return cmd
}

// applyScrapeFlags copies explicitly set flags over the loaded config.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config, flags *scrapeFlags) {
	changed := cmd.Flags().Changed
	if changed("url") {
		cfg.Scraper.ChartURL = flags.url
	}
	if changed("fetch-mode") {
		cfg.Scraper.FetchMode = flags.fetchMode
	}
	if changed("output") {
		cfg.Output.Path = flags.output
	}
	if changed("format") {
		cfg.Output.Format = flags.format
	}
	if changed("headless") {
		cfg.Browser.Headless = flags.headless
	}
	if changed("max-rows") {
		cfg.Scraper.MaxRows = flags.maxRows
	}
	if changed("timeout") {
		cfg.Scraper.Timeout = flags.timeout
	}
	if changed("sample") {
		cfg.Output.SampleSize = flags.sample
	}
}
