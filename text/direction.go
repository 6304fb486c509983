package text

import (
	"golang.org/x/text/unicode/bidi"
)

// Direction is the writing direction of a text item.
type Direction int

const (
	LTR Direction = iota
	RTL
	// Neutral text has no strong characters: digits, punctuation, spaces.
	Neutral
	// TTB marks items set in a vertical font.
	TTB
)

var directionNames = [...]string{LTR: "ltr", RTL: "rtl", Neutral: "neutral", TTB: "ttb"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// Attr returns the value for an HTML dir attribute.
func (d Direction) Attr() string {
	switch d {
	case RTL:
		return "rtl"
	case Neutral:
		return "auto"
	default:
		return "ltr"
	}
}

// DetectDirection returns the dominant direction of s by counting strong
// bidi classes. Strings without strong characters are Neutral.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}

	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	default:
		return LTR
	}
}

// CharDirection returns the strong direction of r from its Unicode bidi
// class. Weak and neutral classes (digits, separators, punctuation) are
// Neutral.
func CharDirection(r rune) Direction {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.L:
		return LTR
	case bidi.R, bidi.AL:
		return RTL
	default:
		return Neutral
	}
}
