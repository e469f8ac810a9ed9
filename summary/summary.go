// Package summary aggregates a run and renders it for the console.
package summary

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/use-agent/topchart/models"
)

// Compute aggregates movies. Ratings and years that do not parse are left
// out of the average and the range.
func Compute(movies []models.Movie) models.Summary {
	s := models.Summary{Total: len(movies)}

	var sum float64
	for _, m := range movies {
		if r, ok := m.ParsedRating(); ok {
			sum += r
			s.RatedCount++
		}
		if y, ok := m.ParsedYear(); ok {
			if s.MinYear == 0 || y < s.MinYear {
				s.MinYear = y
			}
			if y > s.MaxYear {
				s.MaxYear = y
			}
		}
	}
	if s.RatedCount > 0 {
		s.AverageRating = sum / float64(s.RatedCount)
	}
	return s
}

// Render prints the first sample movies as a table followed by the run
// summary.
func Render(w io.Writer, resp *models.ScrapeResponse, sample int) {
	if len(resp.Movies) == 0 {
		fmt.Fprintln(w, "No data was scraped.")
		if resp.Screenshot != "" {
			fmt.Fprintf(w, "Check %s for debugging.\n", resp.Screenshot)
		}
		return
	}

	if sample > 0 {
		n := min(sample, len(resp.Movies))
		fmt.Fprintf(w, "Sample of scraped movie data (%d of %d)\n", n, len(resp.Movies))
		fmt.Fprintln(w, SampleTable(resp.Movies[:n]))
	}

	s := resp.Summary
	fmt.Fprintln(w, "Scraping summary")
	fmt.Fprintf(w, "Total movies scraped: %d\n", s.Total)
	if resp.Skipped > 0 {
		fmt.Fprintf(w, "Rows skipped: %d\n", resp.Skipped)
	}
	if s.RatedCount > 0 {
		fmt.Fprintf(w, "Average IMDb rating: %.2f\n", s.AverageRating)
	}
	if s.MinYear != 0 {
		fmt.Fprintf(w, "Year range: %d - %d\n", s.MinYear, s.MaxYear)
	}
	if resp.OutputPath != "" {
		fmt.Fprintf(w, "Data saved to %s\n", resp.OutputPath)
	}
}

// SampleTable renders movies with a rounded box style.
func SampleTable(movies []models.Movie) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, m := range movies {
		rec := m.Record()
		r := make(table.Row, len(rec))
		for i, v := range rec {
			r[i] = v
		}
		tw.AppendRow(r)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
