package extract

import "strings"

// Locators per field, most current markup first, legacy table layout last.
var (
	TitleLocators = []string{
		"h3.ipc-title__text",
		".cli-title a",
		"td.titleColumn a",
		"[data-testid='title']",
		"a.ipc-title-link-wrapper",
	}

	YearLocators = []string{
		"span[data-testid='title-metadata'] span:first-child",
		".cli-title-metadata span:first-child",
		"td.titleColumn span.secondaryInfo",
		".cli-year",
		"[data-testid='ratingGroup--container'] + div span",
	}

	RatingLocators = []string{
		"span.ipc-rating-star--rating",
		".cli-ratings-container [data-testid='ratingGroup--rating']",
		"td.ratingColumn strong",
		".ipc-rating-star",
		"[data-testid='ratingGroup--container'] span",
	}

	// The last locator targets a pseudo-element; most engines refuse it, so it
	// rarely matches.
	VotesLocators = []string{
		"span.ipc-rating-star--voteCount",
		".cli-ratings-container [data-testid='ratingGroup--rating'] + span",
		"td.ratingColumn strong::after",
	}

	URLLocators = []string{
		"a.ipc-title-link-wrapper",
		".cli-title a",
		"td.titleColumn a",
	}
)

// Chains groups the fallback chain of every movie field.
type Chains struct {
	Title  Chain
	Year   Chain
	Rating Chain
	Votes  Chain
	URL    Chain
}

// DefaultChains returns the chains for the chart page layouts seen so far.
func DefaultChains() Chains {
	return Chains{
		Title:  newChain("title", ReadText, TitleLocators, CleanTitle),
		Year:   newChain("release_year", ReadText, YearLocators, ValidYear),
		Rating: newChain("imdb_rating", ReadText, RatingLocators, ValidRating),
		Votes:  newChain("votes", ReadText, VotesLocators, ValidVotes),
		URL:    newChain("url", ReadAttr("href"), URLLocators, NonEmpty),
	}
}

func newChain(field string, read Reader, locators []string, v Validator) Chain {
	strategies := make([]Strategy, len(locators))
	for i, loc := range locators {
		strategies[i] = Strategy{Locator: loc, Validate: v}
	}
	return Chain{Field: field, Read: read, Strategies: strategies}
}

// CleanTitle drops a leading "N. " ranking label. Only the first ". " is
// considered, so "1. Mr. Robot" becomes "Mr. Robot". A label with nothing
// after it is rejected, including "7." whose trailing space an adapter
// already trimmed.
func CleanTitle(raw string) (string, bool) {
	s := raw
	if _, after, found := strings.Cut(raw, ". "); found {
		s = after
	}
	s = strings.TrimSpace(s)
	if s == "" || isRankLabel(s) {
		return "", false
	}
	return s, true
}

// isRankLabel reports whether s is a bare "N." ranking label.
func isRankLabel(s string) bool {
	digits, found := strings.CutSuffix(s, ".")
	if !found || digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// ValidYear accepts "1994" and "(1994)" but not ranges such as "1994-2003".
func ValidYear(raw string) (string, bool) {
	s := strings.Trim(strings.TrimSpace(raw), "()")
	if s == "" {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s, true
}

// ValidRating accepts any text holding a decimal point, which separates a
// score like "9.3" from certificates like "PG-13".
func ValidRating(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, strings.Contains(s, ".")
}

// ValidVotes strips surrounding parentheses and accepts any remaining text.
func ValidVotes(raw string) (string, bool) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "()"))
	return s, s != ""
}

// NonEmpty accepts any non-blank value.
func NonEmpty(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, s != ""
}
