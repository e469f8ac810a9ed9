package simhash

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// FingerprintDOM fingerprints the structure of an HTML fragment. Each start
// tag contributes "tag.class1.class2" (classes sorted), text and other
// attributes are ignored, and tokens are combined into 3-gram shingles so
// that nesting order matters.
func FingerprintDOM(markup string) uint64 {
	tokens := structureTokens(markup)
	if len(tokens) == 0 {
		return 0
	}

	shingles := makeShingles(tokens, 3)
	if len(shingles) == 0 {
		return FingerprintTokens(tokens)
	}
	return FingerprintTokens(shingles)
}

// structureTokens walks the fragment with the tokenizer and emits one token
// per start tag.
func structureTokens(markup string) []string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var tokens []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			return tokens
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			tokens = append(tokens, tagToken(t))
		}
	}
}

func tagToken(t html.Token) string {
	var classes []string
	for _, a := range t.Attr {
		if a.Key == "class" {
			classes = strings.Fields(a.Val)
			break
		}
	}
	if len(classes) == 0 {
		return t.Data
	}
	sort.Strings(classes)
	return t.Data + "." + strings.Join(classes, ".")
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
