package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/use-agent/topchart/models"
)

// JSONSink writes the movie list as an indented JSON array.
type JSONSink struct {
	path string
}

func (s *JSONSink) Path() string { return s.path }

func (s *JSONSink) Close() error { return nil }

func (s *JSONSink) Write(_ context.Context, resp *models.ScrapeResponse) error {
	return writeFileAtomic(s.path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(resp.Movies); err != nil {
			return fmt.Errorf("output: encode json: %w", err)
		}
		return nil
	})
}
