package models

import "strconv"

// NotAvailable marks a field whose locators produced no valid value.
const NotAvailable = "N/A"

// Movie is one ranked entry extracted from the chart page.
type Movie struct {
	// Rank is the 1-based position of the row on the page.
	Rank int `json:"rank"`

	// Title never carries the "N. " ranking label.
	Title string `json:"title"`

	// ReleaseYear is a digit-only year or NotAvailable.
	ReleaseYear string `json:"release_year"`

	// Rating is a decimal score such as "9.3" or NotAvailable.
	Rating string `json:"imdb_rating"`

	// Votes is the vote count as displayed (e.g. "3M") or NotAvailable.
	Votes string `json:"votes"`

	// URL is the absolute link to the movie's detail page or NotAvailable.
	URL string `json:"url"`
}

// Columns is the header row shared by every tabular output.
var Columns = []string{"rank", "title", "release_year", "imdb_rating", "votes", "url"}

// Record returns the movie as a row aligned with Columns.
func (m Movie) Record() []string {
	return []string{
		strconv.Itoa(m.Rank),
		m.Title,
		m.ReleaseYear,
		m.Rating,
		m.Votes,
		m.URL,
	}
}

// ParsedRating returns the rating as a float when it is present and numeric.
func (m Movie) ParsedRating() (float64, bool) {
	if m.Rating == NotAvailable || m.Rating == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m.Rating, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParsedYear returns the release year as an int when it is present and all digits.
func (m Movie) ParsedYear() (int, bool) {
	if m.ReleaseYear == NotAvailable || m.ReleaseYear == "" {
		return 0, false
	}
	for _, r := range m.ReleaseYear {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(m.ReleaseYear)
	if err != nil {
		return 0, false
	}
	return y, true
}
