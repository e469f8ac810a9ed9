// Package output persists extracted movies. Every file sink rewrites its
// target on each run; the SQLite sink appends one run per call.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/use-agent/topchart/models"
)

// Formats accepted by New.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSQLite   = "sqlite"
)

// Sink writes one run's result somewhere durable.
type Sink interface {
	// Write persists resp. Callers only pass runs that produced movies.
	Write(ctx context.Context, resp *models.ScrapeResponse) error

	// Path is the destination shown to users.
	Path() string

	Close() error
}

// New returns the sink for format writing to path.
func New(format, path string) (Sink, error) {
	switch format {
	case FormatCSV, "":
		return &CSVSink{path: path}, nil
	case FormatJSON:
		return &JSONSink{path: path}, nil
	case FormatMarkdown:
		return NewMarkdownSink(path), nil
	case FormatSQLite:
		return OpenSQLite(path)
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown output format %q", format), nil)
	}
}

// writeFileAtomic replaces path with whatever fill writes, through a
// temporary file in the same directory so readers never see a partial file.
func writeFileAtomic(path string, fill func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("output: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once renamed.
		_ = os.Remove(tmpName)
	}()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("output: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("output: replace %s: %w", path, err)
	}
	return nil
}
