package model

import "strings"

// Category is the kind of work a scope item represents. The set is closed:
// estimation bands, column applicability, and the adjustment guardrail are
// all keyed by it.
type Category string

const (
	CategoryNewUI           Category = "New UI"
	CategoryNewInterface    Category = "New Interface"
	CategoryNewBackgrounder Category = "New Backgrounder"
	CategoryAdjustUI        Category = "Adjust Existing UI"
	CategoryAdjustLogic     Category = "Adjust Existing Logic"
)

var categoryOrder = []Category{
	CategoryNewUI,
	CategoryNewInterface,
	CategoryNewBackgrounder,
	CategoryAdjustUI,
	CategoryAdjustLogic,
}

// Categories returns all known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	t := strings.TrimSpace(s)
	for _, c := range categoryOrder {
		if strings.EqualFold(string(c), t) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// IsAdjustment reports whether c describes a change to an existing feature
// rather than net-new work. Adjustment items fall under the size guardrail.
func (c Category) IsAdjustment() bool {
	return strings.HasPrefix(string(c), "Adjust Existing")
}
