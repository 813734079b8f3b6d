package model

import "strings"

// SizeClass is the ordinal complexity bucket assigned to a scope item.
type SizeClass string

const (
	SizeXS SizeClass = "XS"
	SizeS  SizeClass = "S"
	SizeM  SizeClass = "M"
	SizeL  SizeClass = "L"
	SizeXL SizeClass = "XL"
)

var sizeOrder = []SizeClass{SizeXS, SizeS, SizeM, SizeL, SizeXL}

// SizeClasses returns the five classes in ascending order.
func SizeClasses() []SizeClass {
	out := make([]SizeClass, len(sizeOrder))
	copy(out, sizeOrder)
	return out
}

// ParseSizeClass matches s against the known classes, ignoring case and
// surrounding whitespace. The second return is false for anything else.
func ParseSizeClass(s string) (SizeClass, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	for _, sc := range sizeOrder {
		if string(sc) == t {
			return sc, true
		}
	}
	return "", false
}

// Rank returns the position of s in the XS..XL ordering, or -1 for an
// unknown class.
func (s SizeClass) Rank() int {
	for i, sc := range sizeOrder {
		if sc == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the five known classes.
func (s SizeClass) Valid() bool {
	return s.Rank() >= 0
}

// AtLeast returns the larger of s and min by rank.
func (s SizeClass) AtLeast(min SizeClass) SizeClass {
	if s.Rank() < min.Rank() {
		return min
	}
	return s
}

// AtMost returns the smaller of s and max by rank.
func (s SizeClass) AtMost(max SizeClass) SizeClass {
	if !max.Valid() {
		return s
	}
	if s.Rank() > max.Rank() {
		return max
	}
	return s
}
