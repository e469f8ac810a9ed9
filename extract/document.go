// Package extract turns rendered chart rows into movie records.
//
// Every field is resolved through a Chain: an ordered list of locators, each
// paired with a validator. Locators are tried in priority order against a
// single row and the first value the validator accepts wins. Markup drift
// between page variants therefore degrades a field to models.NotAvailable
// instead of breaking the run.
package extract

import "errors"

var (
	// ErrNotFound reports that a locator matched nothing in its scope.
	ErrNotFound = errors.New("extract: locator matched nothing")

	// ErrDetached reports that a row handle can no longer be queried
	// (stale node, closed page, cancelled context). It aborts the row, not the batch.
	ErrDetached = errors.New("extract: row handle detached")

	// ErrNoTitle reports that no title locator produced a usable title.
	ErrNoTitle = errors.New("extract: no title found")

	// ErrNoRows reports that no row container locator matched the document.
	ErrNoRows = errors.New("extract: no movie rows found")
)

// Element is a resolved node inside a row.
type Element interface {
	// Text returns the visible text of the node.
	Text() (string, error)

	// Attr returns the named attribute, or "" when it is absent.
	// Link attributes are absolute.
	Attr(name string) (string, error)
}

// Row is one rendered list item. Locators are evaluated relative to it.
type Row interface {
	// Find returns the first descendant matching locator, or ErrNotFound.
	Find(locator string) (Element, error)
}

// Document is a rendered page that can enumerate candidate rows.
type Document interface {
	// FindAll returns every node matching locator in document order.
	FindAll(locator string) ([]Row, error)
}

// MarkupRow is implemented by rows that can expose their outer HTML.
type MarkupRow interface {
	HTML() (string, error)
}
