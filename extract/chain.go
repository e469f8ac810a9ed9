package extract

import (
	"errors"
	"fmt"
)

// Reader pulls the raw value out of a resolved element.
type Reader func(Element) (string, error)

// Validator normalises a raw value and reports whether it is acceptable.
type Validator func(raw string) (string, bool)

// Strategy pairs a locator with the predicate its value must satisfy.
type Strategy struct {
	Locator  string
	Validate Validator
}

// Chain is an ordered fallback of strategies for one field.
type Chain struct {
	Field      string
	Read       Reader
	Strategies []Strategy
}

// ReadText reads the element's visible text.
func ReadText(el Element) (string, error) {
	return el.Text()
}

// ReadAttr returns a Reader for the named attribute.
func ReadAttr(name string) Reader {
	return func(el Element) (string, error) {
		return el.Attr(name)
	}
}

// Resolve walks the strategies in order and returns the first accepted value.
//
// Locator misses, read failures and rejected values fall through to the next
// strategy. ErrNotFound is returned when the chain is exhausted. An
// ErrDetached failure stops the walk immediately since no later locator can
// succeed on the same handle.
func (c Chain) Resolve(row Row) (string, error) {
	read := c.Read
	if read == nil {
		read = ReadText
	}

	for _, s := range c.Strategies {
		el, err := row.Find(s.Locator)
		if err != nil {
			if errors.Is(err, ErrDetached) {
				return "", fmt.Errorf("%s via %q: %w", c.Field, s.Locator, err)
			}
			continue
		}

		raw, err := read(el)
		if err != nil {
			if errors.Is(err, ErrDetached) {
				return "", fmt.Errorf("%s via %q: %w", c.Field, s.Locator, err)
			}
			continue
		}

		if v, ok := s.Validate(raw); ok {
			return v, nil
		}
	}
	return "", ErrNotFound
}

// Locators lists the chain's locators in priority order.
func (c Chain) Locators() []string {
	out := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		out[i] = s.Locator
	}
	return out
}
