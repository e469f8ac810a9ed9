package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/topchart/models"
)

// CSVSink writes a UTF-8 CSV with a header row.
type CSVSink struct {
	path string
}

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Close() error { return nil }

func (s *CSVSink) Write(_ context.Context, resp *models.ScrapeResponse) error {
	return writeFileAtomic(s.path, func(f *os.File) error {
		return WriteCSV(f, resp.Movies)
	})
}

// WriteCSV encodes movies as CSV in column order.
func WriteCSV(out io.Writer, movies []models.Movie) error {
	w := csv.NewWriter(out)
	if err := w.Write(models.Columns); err != nil {
		return fmt.Errorf("output: write csv header: %w", err)
	}
	for _, m := range movies {
		if err := w.Write(m.Record()); err != nil {
			return fmt.Errorf("output: write csv row %d: %w", m.Rank, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("output: flush csv: %w", err)
	}
	return nil
}
