// Package htmldoc serves static HTML as an extract.Document. It backs the
// plain-HTTP fetch engine and offline extraction from saved pages.
package htmldoc

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/topchart/extract"
)

// Document is a parsed page. It is safe for concurrent reads.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse reads HTML from r. pageURL is used to resolve relative links and may
// be empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}

	d := &Document{doc: goquery.NewDocumentFromNode(root)}
	if pageURL != "" {
		base, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("htmldoc: invalid page URL %q: %w", pageURL, err)
		}
		d.base = base
	}
	return d, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(markup, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(markup), pageURL)
}

// FindAll implements extract.Document.
func (d *Document) FindAll(locator string) ([]extract.Row, error) {
	m, err := compile(locator)
	if err != nil {
		return nil, err
	}

	sel := d.doc.FindMatcher(m)
	rows := make([]extract.Row, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		rows = append(rows, &row{sel: s, base: d.base})
	})
	return rows, nil
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

type row struct {
	sel  *goquery.Selection
	base *url.URL
}

func (r *row) Find(locator string) (extract.Element, error) {
	m, err := compile(locator)
	if err != nil {
		return nil, err
	}
	found := r.sel.FindMatcher(m).First()
	if found.Length() == 0 {
		return nil, extract.ErrNotFound
	}
	return &element{sel: found, base: r.base}, nil
}

func (r *row) HTML() (string, error) {
	return goquery.OuterHtml(r.sel)
}

type element struct {
	sel  *goquery.Selection
	base *url.URL
}

// Text collapses runs of whitespace the way a browser renders them.
func (e *element) Text() (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *element) Attr(name string) (string, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", nil
	}
	v = strings.TrimSpace(v)
	if (name == "href" || name == "src") && v != "" && e.base != nil {
		ref, err := e.base.Parse(v)
		if err != nil {
			return v, nil
		}
		return ref.String(), nil
	}
	return v, nil
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]cascadia.Selector{}
)

// compile caches compiled locators. A locator cascadia cannot compile (for
// example one ending in a pseudo-element) can never match and reports
// extract.ErrNotFound.
func compile(locator string) (cascadia.Selector, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if m, ok := compiled[locator]; ok {
		return m, nil
	}
	m, err := cascadia.Compile(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: locator %q: %v", extract.ErrNotFound, locator, err)
	}
	compiled[locator] = m
	return m, nil
}
