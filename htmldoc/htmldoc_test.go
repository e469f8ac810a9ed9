package htmldoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/topchart/extract"
)

const page = `<html><head><title> Top 250 </title></head><body>
<ul>
  <li class="item"><a class="t" href="/title/tt1/">1.   Alpha
     One</a><span class="y">(1999)</span></li>
  <li class="item"><a class="t" href="https://example.org/x">2. Beta</a></li>
</ul></body></html>`

func TestFindAllAndFind(t *testing.T) {
	d, err := ParseString(page, "https://www.imdb.com/chart/top/")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if got := d.Title(); got != "Top 250" {
		t.Errorf("Title() = %q", got)
	}

	rows, err := d.FindAll("li.item")
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	el, err := rows[0].Find("a.t")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	txt, _ := el.Text()
	if txt != "1. Alpha One" {
		t.Errorf("Text() = %q, whitespace should be collapsed", txt)
	}
	href, _ := el.Attr("href")
	if href != "https://www.imdb.com/title/tt1/" {
		t.Errorf("href = %q, want an absolute URL", href)
	}

	el2, _ := rows[1].Find("a.t")
	if href, _ := el2.Attr("href"); href != "https://example.org/x" {
		t.Errorf("absolute href changed: %q", href)
	}
	if v, _ := el2.Attr("title"); v != "" {
		t.Errorf("missing attribute should be empty, got %q", v)
	}
}

func TestFind_ScopedToRow(t *testing.T) {
	d, _ := ParseString(page, "")
	rows, _ := d.FindAll("li.item")

	if _, err := rows[1].Find("span.y"); !errors.Is(err, extract.ErrNotFound) {
		t.Errorf("span.y lives in the first row only, err = %v", err)
	}
}

func TestFind_PseudoElementNeverMatches(t *testing.T) {
	d, _ := ParseString(page, "")
	rows, _ := d.FindAll("li.item")

	if _, err := rows[0].Find("a.t::after"); !errors.Is(err, extract.ErrNotFound) {
		t.Errorf("pseudo-element locator should report not found, err = %v", err)
	}
}

func TestRowHTML(t *testing.T) {
	d, _ := ParseString(page, "")
	rows, _ := d.FindAll("li.item")

	markup, err := rows[0].(extract.MarkupRow).HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.HasPrefix(markup, `<li class="item">`) {
		t.Errorf("unexpected outer HTML: %q", markup)
	}
}

func TestParse_InvalidBaseURL(t *testing.T) {
	if _, err := ParseString("<p>x</p>", "://bad"); err == nil {
		t.Error("expected an error for an invalid page URL")
	}
}
