package extract

import (
	"errors"
	"fmt"
	"testing"
)

func TestChainResolve_FirstValidWins(t *testing.T) {
	c := Chain{
		Field: "rating",
		Read:  ReadText,
		Strategies: []Strategy{
			{Locator: "a", Validate: ValidRating},
			{Locator: "b", Validate: ValidRating},
			{Locator: "c", Validate: ValidRating},
			{Locator: "d", Validate: ValidRating},
		},
	}
	row := &fakeRow{els: map[string]*fakeEl{
		"b": text("PG-13"),
		"c": text("8.8"),
		"d": text("7.1"),
	}}

	got, err := c.Resolve(row)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "8.8" {
		t.Errorf("got %q, want %q", got, "8.8")
	}
	want := []string{"a", "b", "c"}
	if fmt.Sprint(row.calls) != fmt.Sprint(want) {
		t.Errorf("lookups = %v, want %v (stop at first accepted value)", row.calls, want)
	}
}

func TestChainResolve_Exhausted(t *testing.T) {
	c := Chain{
		Field:      "year",
		Strategies: []Strategy{{Locator: "a", Validate: ValidYear}, {Locator: "b", Validate: ValidYear}},
	}
	row := &fakeRow{els: map[string]*fakeEl{"a": text("1994-2003")}}

	_, err := c.Resolve(row)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestChainResolve_ReadErrorFallsThrough(t *testing.T) {
	c := Chain{
		Field:      "title",
		Strategies: []Strategy{{Locator: "a", Validate: CleanTitle}, {Locator: "b", Validate: CleanTitle}},
	}
	row := &fakeRow{els: map[string]*fakeEl{
		"a": {textErr: errors.New("not rendered")},
		"b": text("Heat"),
	}}

	got, err := c.Resolve(row)
	if err != nil || got != "Heat" {
		t.Fatalf("Resolve = %q, %v; want %q, nil", got, err, "Heat")
	}
}

func TestChainResolve_LookupErrorFallsThrough(t *testing.T) {
	c := Chain{
		Field:      "votes",
		Strategies: []Strategy{{Locator: "bad::after", Validate: ValidVotes}, {Locator: "b", Validate: ValidVotes}},
	}
	row := &fakeRow{
		errs: map[string]error{"bad::after": errors.New("invalid selector")},
		els:  map[string]*fakeEl{"b": text("(2.9M)")},
	}

	got, err := c.Resolve(row)
	if err != nil || got != "2.9M" {
		t.Fatalf("Resolve = %q, %v; want %q, nil", got, err, "2.9M")
	}
}

func TestChainResolve_DetachedStops(t *testing.T) {
	c := Chain{
		Field:      "title",
		Strategies: []Strategy{{Locator: "a", Validate: CleanTitle}, {Locator: "b", Validate: CleanTitle}},
	}
	row := &fakeRow{
		errs: map[string]error{"a": fmt.Errorf("%w: node gone", ErrDetached)},
		els:  map[string]*fakeEl{"b": text("Heat")},
	}

	_, err := c.Resolve(row)
	if !errors.Is(err, ErrDetached) {
		t.Fatalf("err = %v, want ErrDetached", err)
	}
	if len(row.calls) != 1 {
		t.Errorf("expected the walk to stop after the detached lookup, got %v", row.calls)
	}
}

func TestChainResolve_AttrReader(t *testing.T) {
	c := Chain{
		Field:      "url",
		Read:       ReadAttr("href"),
		Strategies: []Strategy{{Locator: "a", Validate: NonEmpty}, {Locator: "b", Validate: NonEmpty}},
	}
	row := &fakeRow{els: map[string]*fakeEl{
		"a": {attrs: map[string]string{}},
		"b": link("https://www.imdb.com/title/tt0068646/"),
	}}

	got, err := c.Resolve(row)
	if err != nil || got != "https://www.imdb.com/title/tt0068646/" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
}

func TestDefaultChainSizes(t *testing.T) {
	c := DefaultChains()
	tests := []struct {
		chain Chain
		want  int
	}{
		{c.Title, 5},
		{c.Year, 5},
		{c.Rating, 5},
		{c.Votes, 3},
		{c.URL, 3},
	}
	for _, tt := range tests {
		if got := len(tt.chain.Strategies); got != tt.want {
			t.Errorf("%s chain has %d strategies, want %d", tt.chain.Field, got, tt.want)
		}
	}
}
