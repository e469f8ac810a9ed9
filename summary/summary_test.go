package summary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/use-agent/topchart/models"
)

func TestCompute(t *testing.T) {
	movies := []models.Movie{
		{Rank: 1, Title: "A", ReleaseYear: "1994", Rating: "9.3"},
		{Rank: 2, Title: "B", ReleaseYear: "1972", Rating: "9.2"},
		{Rank: 3, Title: "C", ReleaseYear: models.NotAvailable, Rating: models.NotAvailable},
		{Rank: 4, Title: "D", ReleaseYear: "2008", Rating: "bad"},
	}

	got := Compute(movies)
	want := models.Summary{
		Total:         4,
		AverageRating: 9.25,
		RatedCount:    2,
		MinYear:       1972,
		MaxYear:       2008,
	}
	if diff := cmp.Diff(want, got, cmpFloat()); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Empty(t *testing.T) {
	if diff := cmp.Diff(models.Summary{}, Compute(nil)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	movies := []models.Movie{
		{Rank: 1, Title: "The Shawshank Redemption", ReleaseYear: "1994", Rating: "9.3", Votes: "3M", URL: "u1"},
		{Rank: 2, Title: "The Godfather", ReleaseYear: "1972", Rating: "9.2", Votes: "2M", URL: "u2"},
		{Rank: 3, Title: "The Dark Knight", ReleaseYear: "2008", Rating: "9.0", Votes: "2.9M", URL: "u3"},
	}
	resp := &models.ScrapeResponse{Movies: movies, Summary: Compute(movies), OutputPath: "imdb_top_250.csv"}

	var buf bytes.Buffer
	Render(&buf, resp, 2)
	out := buf.String()

	for _, want := range []string{
		"Sample of scraped movie data (2 of 3)",
		"The Godfather",
		"Total movies scraped: 3",
		"Average IMDb rating: 9.17",
		"Year range: 1972 - 2008",
		"Data saved to imdb_top_250.csv",
		"╭",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "The Dark Knight") {
		t.Error("sample should stop at 2 rows")
	}
}

func TestRender_NoMovies(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &models.ScrapeResponse{Screenshot: "imdb_debug.png"}, 5)

	out := buf.String()
	if !strings.Contains(out, "No data was scraped.") || !strings.Contains(out, "imdb_debug.png") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Average") {
		t.Error("no statistics for an empty run")
	}
}

func cmpFloat() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
