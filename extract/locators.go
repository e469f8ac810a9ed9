package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// RowLocators lists the row container locators in priority order.
var RowLocators = []string{
	"li.ipc-metadata-list-summary-item",
	"tbody.lister-list tr",
	".cli-children",
	"[data-testid='chart-layout-main-column'] li",
}

// BestEffort reports whether locator targets a pseudo-element. Such locators
// parse, but no DOM node can be returned for them.
func BestEffort(locator string) bool {
	sel, err := cascadia.ParseWithPseudoElement(locator)
	if err != nil {
		return false
	}
	return sel.PseudoElement() != ""
}

// ValidateLocators checks that every locator is a parsable CSS selector.
// Pseudo-element locators are accepted.
func ValidateLocators(locators []string) error {
	if len(locators) == 0 {
		return fmt.Errorf("extract: empty locator list")
	}
	for _, loc := range locators {
		if _, err := cascadia.ParseWithPseudoElement(loc); err != nil {
			return fmt.Errorf("extract: invalid locator %q: %w", loc, err)
		}
	}
	return nil
}
