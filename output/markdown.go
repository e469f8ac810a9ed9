package output

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/use-agent/topchart/models"
)

// MarkdownSink writes the chart as a Markdown table with linked titles.
type MarkdownSink struct {
	path string
	conv *converter.Converter
}

// NewMarkdownSink returns a sink writing to path.
func NewMarkdownSink(path string) *MarkdownSink {
	return &MarkdownSink{path: path, conv: newMarkdownConverter()}
}

// newMarkdownConverter creates a goroutine-safe Converter with table support.
// Minimal cell padding keeps wide charts diff-friendly.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

func (s *MarkdownSink) Path() string { return s.path }

func (s *MarkdownSink) Close() error { return nil }

func (s *MarkdownSink) Write(_ context.Context, resp *models.ScrapeResponse) error {
	md, err := s.Render(resp)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, func(f *os.File) error {
		if _, err := f.WriteString(md); err != nil {
			return fmt.Errorf("output: write markdown: %w", err)
		}
		return nil
	})
}

// Render converts the run into Markdown. Relative links resolve against the
// source page's origin.
func (s *MarkdownSink) Render(resp *models.ScrapeResponse) (string, error) {
	md, err := s.conv.ConvertString(tableHTML(resp), converter.WithDomain(origin(resp.SourceURL)))
	if err != nil {
		return "", fmt.Errorf("output: convert markdown: %w", err)
	}
	return md + "\n", nil
}

// tableHTML lays the movies out as an HTML table under a heading.
func tableHTML(resp *models.ScrapeResponse) string {
	var b strings.Builder
	b.WriteString("<h1>Top Rated Movies</h1>")
	if resp.SourceURL != "" {
		fmt.Fprintf(&b, `<p>Source: <a href="%s">%s</a></p>`,
			html.EscapeString(resp.SourceURL), html.EscapeString(resp.SourceURL))
	}

	b.WriteString("<table><thead><tr>")
	for _, c := range models.Columns {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(c))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, m := range resp.Movies {
		b.WriteString("<tr>")
		for i, v := range m.Record() {
			b.WriteString("<td>")
			if i == 1 && m.URL != models.NotAvailable && m.URL != "" {
				fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(m.URL), html.EscapeString(v))
			} else {
				b.WriteString(html.EscapeString(v))
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
