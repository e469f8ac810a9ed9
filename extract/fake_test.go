package extract

import "fmt"

// fakeDoc maps a locator to the rows it matches.
type fakeDoc struct {
	rows map[string][]Row
	errs map[string]error
}

func (d *fakeDoc) FindAll(locator string) ([]Row, error) {
	if err := d.errs[locator]; err != nil {
		return nil, err
	}
	return d.rows[locator], nil
}

// fakeRow maps a locator to an element; missing locators are not found.
type fakeRow struct {
	id    string
	els   map[string]*fakeEl
	errs  map[string]error
	calls []string
	panic bool
}

func (r *fakeRow) Find(locator string) (Element, error) {
	r.calls = append(r.calls, locator)
	if r.panic {
		panic("node vanished")
	}
	if err := r.errs[locator]; err != nil {
		return nil, err
	}
	el, ok := r.els[locator]
	if !ok {
		return nil, ErrNotFound
	}
	return el, nil
}

type fakeEl struct {
	text    string
	attrs   map[string]string
	textErr error
}

func (e *fakeEl) Text() (string, error) {
	return e.text, e.textErr
}

func (e *fakeEl) Attr(name string) (string, error) {
	return e.attrs[name], nil
}

func text(s string) *fakeEl { return &fakeEl{text: s} }

func link(href string) *fakeEl {
	return &fakeEl{attrs: map[string]string{"href": href}}
}

// modernRow is a fully populated row in the current summary-item layout.
func modernRow(rank int, title string) *fakeRow {
	return &fakeRow{
		id: title,
		els: map[string]*fakeEl{
			"h3.ipc-title__text": text(fmt.Sprintf("%d. %s", rank, title)),
			"span[data-testid='title-metadata'] span:first-child": text("1994"),
			"span.ipc-rating-star--rating":                         text("9.3"),
			"span.ipc-rating-star--voteCount":                      text(" (3M)"),
			"a.ipc-title-link-wrapper":                             link(fmt.Sprintf("https://www.imdb.com/title/tt%07d/", rank)),
		},
	}
}

func rowsOf(rs ...*fakeRow) []Row {
	out := make([]Row, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}
