package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"

	"github.com/use-agent/topchart/extract"
)

// document adapts a live rod page to extract.Document. Queries never wait:
// the page was settled by Load, and a locator that matches nothing must fall
// through to the next one immediately.
type document struct {
	page *rod.Page
}

func (d document) FindAll(locator string) ([]extract.Row, error) {
	els, err := d.page.Elements(locator)
	if err != nil {
		return nil, classify(err)
	}
	rows := make([]extract.Row, len(els))
	for i, el := range els {
		rows[i] = row{el: el}
	}
	return rows, nil
}

type row struct {
	el *rod.Element
}

func (r row) Find(locator string) (extract.Element, error) {
	els, err := r.el.Elements(locator)
	if err != nil {
		return nil, classify(err)
	}
	if len(els) == 0 {
		return nil, extract.ErrNotFound
	}
	return element{el: els.First()}, nil
}

func (r row) HTML() (string, error) {
	s, err := r.el.HTML()
	if err != nil {
		return "", classify(err)
	}
	return s, nil
}

type element struct {
	el *rod.Element
}

func (e element) Text() (string, error) {
	s, err := e.el.Text()
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(s), nil
}

// Attr reads the DOM property rather than the raw attribute so href comes
// back absolute.
func (e element) Attr(name string) (string, error) {
	v, err := e.el.Property(name)
	if err != nil {
		return "", classify(err)
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

// classify maps rod failures onto the extractor's sentinels. Anything that
// means the node or page is gone is ErrDetached; everything else, including
// selectors the browser rejects, counts as a miss.
func classify(err error) error {
	var objErr *rod.ObjectNotFoundError
	var cdpErr *cdp.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", extract.ErrDetached, err)
	case errors.As(err, &objErr):
		return fmt.Errorf("%w: %v", extract.ErrDetached, err)
	case errors.As(err, &cdpErr) && staleNode(cdpErr.Message):
		return fmt.Errorf("%w: %v", extract.ErrDetached, err)
	default:
		return fmt.Errorf("%w: %v", extract.ErrNotFound, err)
	}
}

func staleNode(msg string) bool {
	for _, s := range []string{
		"Cannot find context with specified id",
		"Could not find node with given id",
		"does not belong to the document",
		"Target closed",
		"Session with given id not found",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
